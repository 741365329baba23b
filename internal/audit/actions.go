package audit

const (
	ActionOrderCreated         = "order_created"
	ActionOrderUpdated         = "order_updated"
	ActionOrderCancelled       = "order_cancelled"
	ActionOrderDeleted         = "order_deleted"
	ActionAppointmentBooked    = "appointment_booked"
	ActionAppointmentStatus    = "appointment_status_changed"
	ActionAppointmentCancelled = "appointment_cancelled"
	ActionAppointmentConflict  = "appointment_conflict"
	ActionPointsAwarded        = "loyalty_points_awarded"
	ActionPointsRedeemed       = "loyalty_points_redeemed"
	ActionProductCreated       = "product_created"
	ActionProductUpdated       = "product_updated"
	ActionUserRegistered       = "user_registered"
	ActionUserCreated          = "user_created"
	ActionProfileUpdated       = "profile_updated"
	ActionReviewCreated        = "review_created"
	ActionReviewModerated      = "review_moderated"
	ActionReviewDeleted        = "review_deleted"
	ActionRewardClaimed        = "loyalty_reward_claimed"

	EntityOrder       = "order"
	EntityAppointment = "appointment"
	EntityLoyalty     = "loyalty_transaction"
	EntityProduct     = "product"
	EntityUser        = "user"
	EntityReview      = "review"
	EntityReward      = "loyalty_reward"
)
