package review

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lebarbier/lebarbier-api/internal/audit"
	"github.com/lebarbier/lebarbier-api/internal/authz"
	"github.com/lebarbier/lebarbier-api/internal/httperr"
)

var (
	admin    = &authz.Principal{UserID: uuid.New(), Role: authz.RoleAdmin}
	client   = &authz.Principal{UserID: uuid.New(), Role: authz.RoleClient}
	stranger = &authz.Principal{UserID: uuid.New(), Role: authz.RoleClient}
	barber   = uuid.New()
)

func ptr[T any](v T) *T { return &v }

func TestReviews_CreateRules(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	pub := &recordingPublisher{}
	uc := NewReviews(repo, pub)

	done := repo.addAppointment(client.UserID, barber, "COMPLETED")
	pending := repo.addAppointment(client.UserID, barber, "CONFIRMED")

	tests := []struct {
		name string
		who  *authz.Principal
		in   CreateInput
		kind httperr.Kind
		code string
	}{
		{"bad service rating", client, CreateInput{AppointmentID: done.ID, ServiceRating: 0, EmployeeRating: 5}, httperr.KindValidation, "invalid_rating"},
		{"bad employee rating", client, CreateInput{AppointmentID: done.ID, ServiceRating: 5, EmployeeRating: 6}, httperr.KindValidation, "invalid_rating"},
		{"unknown appointment", client, CreateInput{AppointmentID: uuid.New(), ServiceRating: 5, EmployeeRating: 5}, httperr.KindNotFound, "appointment_not_found"},
		{"not the owner", stranger, CreateInput{AppointmentID: done.ID, ServiceRating: 5, EmployeeRating: 5}, httperr.KindAuthorization, "forbidden"},
		{"not completed", client, CreateInput{AppointmentID: pending.ID, ServiceRating: 5, EmployeeRating: 5}, httperr.KindConflict, "appointment_not_completed"},
		{"other employee", client, CreateInput{AppointmentID: done.ID, EmployeeID: ptr(uuid.New()), ServiceRating: 5, EmployeeRating: 5}, httperr.KindValidation, "employee_mismatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := uc.Create(ctx, tt.who, tt.in)
			require.Error(t, err)
			assert.Equal(t, tt.kind, httperr.KindOf(err))
			assert.True(t, httperr.IsCode(err, tt.code))
		})
	}
	assert.Empty(t, repo.reviews)
	assert.Empty(t, pub.events)

	rv, err := uc.Create(ctx, client, CreateInput{
		AppointmentID:  done.ID,
		EmployeeID:     &barber,
		ServiceRating:  4,
		EmployeeRating: 5,
		Comment:        "  Très bien  ",
	})
	require.NoError(t, err)
	assert.Equal(t, barber, rv.EmployeeID)
	assert.Equal(t, "Très bien", rv.Comment)
	assert.False(t, rv.IsApproved)
	assert.NotContains(t, repo.ratings, barber, "pending reviews leave the rating alone")

	require.Len(t, pub.events, 1)
	assert.Equal(t, audit.ActionReviewCreated, pub.events[0].Action)

	_, err = uc.Create(ctx, client, CreateInput{AppointmentID: done.ID, ServiceRating: 3, EmployeeRating: 3})
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "review_exists"))
}

func TestReviews_ModerationDrivesEmployeeRating(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := NewReviews(repo, &recordingPublisher{})

	a := repo.addAppointment(client.UserID, barber, "COMPLETED")
	b := repo.addAppointment(client.UserID, barber, "COMPLETED")

	r1, err := uc.Create(ctx, client, CreateInput{AppointmentID: a.ID, ServiceRating: 5, EmployeeRating: 5})
	require.NoError(t, err)
	r2, err := uc.Create(ctx, client, CreateInput{AppointmentID: b.ID, ServiceRating: 3, EmployeeRating: 2})
	require.NoError(t, err)

	_, err = uc.Moderate(ctx, admin, r1.ID, true)
	require.NoError(t, err)
	assert.Equal(t, employeeRating{avg: 5, count: 1}, repo.ratings[barber])

	_, err = uc.Moderate(ctx, admin, r2.ID, true)
	require.NoError(t, err)
	assert.Equal(t, employeeRating{avg: 3.5, count: 2}, repo.ratings[barber])

	// an author edit sends the review back to moderation
	edited, err := uc.Update(ctx, client, r2.ID, UpdateInput{EmployeeRating: ptr(4)})
	require.NoError(t, err)
	assert.False(t, edited.IsApproved)
	assert.Equal(t, employeeRating{avg: 5, count: 1}, repo.ratings[barber])

	require.NoError(t, uc.Delete(ctx, client, r1.ID))
	assert.Equal(t, employeeRating{avg: 0, count: 0}, repo.ratings[barber])
}

func TestReviews_AdminEditKeepsApproval(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := NewReviews(repo, &recordingPublisher{})

	ap := repo.addAppointment(client.UserID, barber, "COMPLETED")
	rv, err := uc.Create(ctx, client, CreateInput{AppointmentID: ap.ID, ServiceRating: 4, EmployeeRating: 4})
	require.NoError(t, err)
	_, err = uc.Moderate(ctx, admin, rv.ID, true)
	require.NoError(t, err)

	out, err := uc.Update(ctx, admin, rv.ID, UpdateInput{EmployeeRating: ptr(2), Comment: ptr(" ok ")})
	require.NoError(t, err)
	assert.True(t, out.IsApproved)
	assert.Equal(t, "ok", out.Comment)
	assert.Equal(t, employeeRating{avg: 2, count: 1}, repo.ratings[barber])
}

func TestReviews_OnlyAuthorOrAdminMayChange(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := NewReviews(repo, &recordingPublisher{})

	ap := repo.addAppointment(client.UserID, barber, "COMPLETED")
	rv, err := uc.Create(ctx, client, CreateInput{AppointmentID: ap.ID, ServiceRating: 4, EmployeeRating: 4})
	require.NoError(t, err)

	_, err = uc.Update(ctx, stranger, rv.ID, UpdateInput{Comment: ptr("spam")})
	require.Error(t, err)
	assert.Equal(t, httperr.KindAuthorization, httperr.KindOf(err))

	err = uc.Delete(ctx, stranger, rv.ID)
	require.Error(t, err)
	assert.Equal(t, httperr.KindAuthorization, httperr.KindOf(err))
	assert.Contains(t, repo.reviews, rv.ID)

	_, err = uc.Update(ctx, client, rv.ID, UpdateInput{ServiceRating: ptr(9)})
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "invalid_rating"))

	require.NoError(t, uc.Delete(ctx, admin, rv.ID))
	assert.NotContains(t, repo.reviews, rv.ID)
}

func TestReviews_Visibility(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := NewReviews(repo, &recordingPublisher{})

	mine := repo.addAppointment(client.UserID, barber, "COMPLETED")
	theirs := repo.addAppointment(stranger.UserID, barber, "COMPLETED")

	own, err := uc.Create(ctx, client, CreateInput{AppointmentID: mine.ID, ServiceRating: 4, EmployeeRating: 4})
	require.NoError(t, err)
	other, err := uc.Create(ctx, stranger, CreateInput{AppointmentID: theirs.ID, ServiceRating: 2, EmployeeRating: 2})
	require.NoError(t, err)

	_, err = uc.Get(ctx, nil, own.ID)
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "review_not_found"))

	got, err := uc.Get(ctx, client, own.ID)
	require.NoError(t, err)
	assert.Equal(t, own.ID, got.ID)

	anon, err := uc.List(ctx, nil, ListInput{Approved: ptr(false)})
	require.NoError(t, err)
	assert.Empty(t, anon.Reviews)
	assert.Nil(t, anon.Stats)
	require.NotNil(t, repo.last.Approved)
	assert.True(t, *repo.last.Approved, "pending filter ignored for non-admins")

	self, err := uc.List(ctx, client, ListInput{})
	require.NoError(t, err)
	require.Len(t, self.Reviews, 1)
	assert.Equal(t, own.ID, self.Reviews[0].ID)

	all, err := uc.List(ctx, admin, ListInput{Approved: ptr(false)})
	require.NoError(t, err)
	assert.Len(t, all.Reviews, 2)
	require.NotNil(t, all.Stats)
	assert.Equal(t, int64(2), all.Stats.Pending)
	assert.Nil(t, repo.last.Viewer)

	_, err = uc.Moderate(ctx, admin, other.ID, true)
	require.NoError(t, err)
	public, err := uc.List(ctx, nil, ListInput{})
	require.NoError(t, err)
	require.Len(t, public.Reviews, 1)
	assert.Equal(t, other.ID, public.Reviews[0].ID)
}

func TestReviews_Respond(t *testing.T) {
	ctx := context.Background()
	repo := newFakeRepo()
	uc := NewReviews(repo, &recordingPublisher{})
	fixed := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	uc.now = func() time.Time { return fixed }

	ap := repo.addAppointment(client.UserID, barber, "COMPLETED")
	rv, err := uc.Create(ctx, client, CreateInput{AppointmentID: ap.ID, ServiceRating: 5, EmployeeRating: 5})
	require.NoError(t, err)

	_, err = uc.Respond(ctx, rv.ID, "   ")
	require.Error(t, err)
	assert.True(t, httperr.IsCode(err, "invalid_response"))

	out, err := uc.Respond(ctx, rv.ID, " Merci ! ")
	require.NoError(t, err)
	assert.Equal(t, "Merci !", out.Response)
	require.NotNil(t, out.RespondedAt)
	assert.Equal(t, fixed, *out.RespondedAt)
	assert.NotContains(t, repo.ratings, barber)
}
