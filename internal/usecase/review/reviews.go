package review

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	appointment "github.com/lebarbier/lebarbier-api/internal/domain/appointment"
	domain "github.com/lebarbier/lebarbier-api/internal/domain/review"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
	"github.com/lebarbier/lebarbier-api/internal/models"
	"github.com/lebarbier/lebarbier-api/internal/pagination"
)

type Reviews struct {
	repo  domain.Repository
	audit audit.Publisher
	now   func() time.Time
}

func NewReviews(repo domain.Repository, audit audit.Publisher) *Reviews {
	return &Reviews{repo: repo, audit: audit, now: time.Now}
}

// ======================================================
// CREATE
// ======================================================

type CreateInput struct {
	AppointmentID uuid.UUID
	// EmployeeID defaults to the appointment's employee. When given it must
	// match.
	EmployeeID     *uuid.UUID
	ServiceRating  int
	EmployeeRating int
	Comment        string
}

// Create records the caller's review of one of their completed
// appointments. It starts unapproved and does not move the employee
// rating until moderated.
func (uc *Reviews) Create(ctx context.Context, who *authz.Principal, in CreateInput) (*models.Review, error) {
	if err := domain.ValidateRating("du service", in.ServiceRating); err != nil {
		return nil, err
	}
	if err := domain.ValidateRating("de l'employé", in.EmployeeRating); err != nil {
		return nil, err
	}

	ap, err := uc.repo.GetAppointment(ctx, in.AppointmentID)
	if err != nil {
		return nil, err
	}
	if ap.UserID != who.UserID {
		return nil, httperr.Forbidden("forbidden", "Ce rendez-vous ne vous appartient pas.")
	}
	if appointment.Status(ap.Status) != appointment.StatusCompleted {
		return nil, httperr.Conflict("appointment_not_completed",
			"Seuls les rendez-vous terminés peuvent être évalués.")
	}
	if in.EmployeeID != nil && *in.EmployeeID != ap.EmployeeID {
		return nil, httperr.Validation("employee_mismatch",
			"L'employé ne correspond pas au rendez-vous.")
	}

	rv := &models.Review{
		UserID:         who.UserID,
		AppointmentID:  ap.ID,
		EmployeeID:     ap.EmployeeID,
		ServiceRating:  in.ServiceRating,
		EmployeeRating: in.EmployeeRating,
		Comment:        strings.TrimSpace(in.Comment),
	}
	if err := uc.repo.Create(ctx, rv); err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionReviewCreated,
		Entity:   audit.EntityReview,
		EntityID: &rv.ID,
		Metadata: map[string]any{"appointment_id": ap.ID, "employee_rating": rv.EmployeeRating},
	})

	return rv, nil
}

// ======================================================
// READ
// ======================================================

type ListInput struct {
	EmployeeID *uuid.UUID
	UserID     *uuid.UUID
	// Approved filters by moderation state. Only admins may see pending
	// reviews of other users.
	Approved  *bool
	MinRating int
	pagination.Params
}

type ListOutput struct {
	Reviews    []models.Review `json:"reviews"`
	Pagination pagination.Meta `json:"pagination"`
	Stats      *domain.Stats   `json:"stats,omitempty"`
}

// List is public. Anonymous callers see approved reviews; signed-in
// callers also see their own pending ones; admins see everything and get
// the moderation stats.
func (uc *Reviews) List(ctx context.Context, who *authz.Principal, in ListInput) (*ListOutput, error) {
	f := domain.Filter{
		EmployeeID: in.EmployeeID,
		UserID:     in.UserID,
		Approved:   in.Approved,
		MinRating:  in.MinRating,
		Params:     in.Params.Normalize(pagination.DefaultLimit),
	}

	if !who.IsAdmin() {
		approved := true
		f.Approved = &approved
		if who != nil {
			f.Viewer = &who.UserID
		}
	}

	if err := f.Validate(); err != nil {
		return nil, err
	}

	reviews, total, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []models.Review{}
	}

	out := &ListOutput{
		Reviews:    reviews,
		Pagination: pagination.NewMeta(f.Params, total),
	}

	if who.IsAdmin() {
		stats, err := uc.repo.Stats(ctx, f)
		if err != nil {
			return nil, err
		}
		out.Stats = &stats
	}

	return out, nil
}

func (uc *Reviews) Get(ctx context.Context, who *authz.Principal, id uuid.UUID) (*models.Review, error) {
	rv, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !rv.IsApproved && !who.Owns(rv.UserID) {
		return nil, httperr.NotFoundError("review_not_found", "Avis introuvable.")
	}
	return rv, nil
}

// ======================================================
// UPDATE
// ======================================================

type UpdateInput struct {
	ServiceRating  *int
	EmployeeRating *int
	Comment        *string
}

// Update edits ratings or comment. An edit by the author sends the review
// back to moderation.
func (uc *Reviews) Update(ctx context.Context, who *authz.Principal, id uuid.UUID, in UpdateInput) (*models.Review, error) {
	if in.ServiceRating != nil {
		if err := domain.ValidateRating("du service", *in.ServiceRating); err != nil {
			return nil, err
		}
	}
	if in.EmployeeRating != nil {
		if err := domain.ValidateRating("de l'employé", *in.EmployeeRating); err != nil {
			return nil, err
		}
	}

	return uc.mutate(ctx, id, func(rv *models.Review) error {
		if !who.Owns(rv.UserID) {
			return httperr.Forbidden("forbidden", "Accès refusé.")
		}
		if in.ServiceRating != nil {
			rv.ServiceRating = *in.ServiceRating
		}
		if in.EmployeeRating != nil {
			rv.EmployeeRating = *in.EmployeeRating
		}
		if in.Comment != nil {
			rv.Comment = strings.TrimSpace(*in.Comment)
		}
		if !who.IsAdmin() {
			rv.IsApproved = false
		}
		return nil
	})
}

// Moderate approves or hides a review and refreshes the employee rating.
func (uc *Reviews) Moderate(ctx context.Context, who *authz.Principal, id uuid.UUID, approved bool) (*models.Review, error) {
	rv, err := uc.mutate(ctx, id, func(rv *models.Review) error {
		rv.IsApproved = approved
		return nil
	})
	if err != nil {
		return nil, err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionReviewModerated,
		Entity:   audit.EntityReview,
		EntityID: &rv.ID,
		Metadata: map[string]any{"approved": approved},
	})

	return rv, nil
}

func (uc *Reviews) Respond(ctx context.Context, id uuid.UUID, response string) (*models.Review, error) {
	response = strings.TrimSpace(response)
	if response == "" {
		return nil, httperr.Validation("invalid_response", "La réponse est requise.")
	}

	return uc.mutate(ctx, id, func(rv *models.Review) error {
		at := uc.now()
		rv.Response = response
		rv.RespondedAt = &at
		return nil
	})
}

// mutate applies fn to the stored review inside a transaction and
// recomputes the employee rating when an approved review is touched.
func (uc *Reviews) mutate(ctx context.Context, id uuid.UUID, fn func(rv *models.Review) error) (*models.Review, error) {
	var out *models.Review

	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		rv, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		before := *rv

		if err := fn(rv); err != nil {
			return err
		}
		if err := tx.Update(ctx, rv); err != nil {
			return err
		}

		if before.IsApproved || rv.IsApproved {
			if err := refreshRating(ctx, tx, rv.EmployeeID); err != nil {
				return err
			}
		}

		out = rv
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ======================================================
// DELETE
// ======================================================

func (uc *Reviews) Delete(ctx context.Context, who *authz.Principal, id uuid.UUID) error {
	err := uc.repo.WithTx(ctx, func(tx domain.Repository) error {
		rv, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !who.Owns(rv.UserID) {
			return httperr.Forbidden("forbidden", "Accès refusé.")
		}
		if err := tx.Delete(ctx, id); err != nil {
			return err
		}
		if rv.IsApproved {
			return refreshRating(ctx, tx, rv.EmployeeID)
		}
		return nil
	})
	if err != nil {
		return err
	}

	uc.audit.Dispatch(audit.Event{
		UserID:   &who.UserID,
		Action:   audit.ActionReviewDeleted,
		Entity:   audit.EntityReview,
		EntityID: &id,
	})

	return nil
}

func refreshRating(ctx context.Context, tx domain.Repository, employeeID uuid.UUID) error {
	ratings, err := tx.ApprovedRatings(ctx, employeeID)
	if err != nil {
		return err
	}
	return tx.SetEmployeeRating(ctx, employeeID, domain.Average(ratings), len(ratings))
}
