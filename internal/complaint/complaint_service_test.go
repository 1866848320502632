package complaint_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"

	"campusreport/backend/internal/apperr"
	"campusreport/backend/internal/auth"
	"campusreport/backend/internal/complaint"
	"campusreport/backend/internal/models"
	"campusreport/backend/internal/storage/storagetest"
	"campusreport/backend/internal/upload"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *complaint.Service
	store     *storagetest.Memory
	uploader  *MockUploader
	notifier  *MockDispatcher
	publisher *MockPublisher
	student   auth.Session
	other     auth.Session
	admin     auth.Session
	authority auth.Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	store := storagetest.NewMemory()

	mkUser := func(name string, role models.Role) auth.Session {
		u := &models.User{Name: name, Email: strings.ToLower(name) + "@x.com", Password: "hash", Role: role}
		require.NoError(t, store.CreateUser(ctx, u))
		return auth.Session{UserID: u.ID, Role: role}
	}

	f := &fixture{
		store:     store,
		uploader:  new(MockUploader),
		notifier:  new(MockDispatcher),
		publisher: new(MockPublisher),
		student:   mkUser("Alice", models.RoleStudent),
		other:     mkUser("Bob", models.RoleStudent),
		admin:     mkUser("Root", models.RoleAdmin),
		authority: mkUser("Warden", models.RoleAuthority),
	}
	f.svc = complaint.NewService(store, f.uploader, f.notifier, f.publisher)
	return f
}

// expectSideEffects accepts any notification and feed event.
func (f *fixture) expectSideEffects() {
	f.notifier.On("Notify", mock.Anything, mock.Anything).Return(nil).Maybe()
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil).Maybe()
}

func files(n int) []upload.File {
	out := make([]upload.File, n)
	for i := range out {
		name := fmt.Sprintf("img%d.png", i+1)
		out[i] = upload.File{
			Name: name,
			Open: func() (io.ReadCloser, error) { return io.NopCloser(strings.NewReader(name)), nil },
		}
	}
	return out
}

func validInput(n int) complaint.CreateInput {
	return complaint.CreateInput{
		Title:       "Theft",
		Description: "Bike stolen near library",
		Category:    "Theft",
		Latitude:    "22.8",
		Longitude:   "89.5",
		Files:       files(n),
	}
}

func (f *fixture) uploadsByName() {
	f.uploader.On("Upload", mock.Anything, mock.AnythingOfType("upload.File")).
		Return(func(_ context.Context, file upload.File) string { return "https://cdn.example/" + file.Name }, nil)
}

func TestCreateComplaint_EvidenceLengthAndOrder(t *testing.T) {
	for n := 0; n <= 5; n++ {
		t.Run(fmt.Sprintf("%d files", n), func(t *testing.T) {
			f := newFixture(t)
			f.expectSideEffects()
			f.uploadsByName()

			c, err := f.svc.CreateComplaint(context.Background(), f.student, validInput(n))
			require.NoError(t, err)

			stored, err := f.store.GetComplaintByID(context.Background(), c.ID)
			require.NoError(t, err)
			require.Len(t, stored.Evidence, n)
			for i, url := range stored.Evidence {
				assert.Equal(t, fmt.Sprintf("https://cdn.example/img%d.png", i+1), url)
			}
			assert.Equal(t, models.StatusPending, stored.Status)
			assert.Equal(t, f.student.UserID, stored.UserID)
			assert.Equal(t, models.Location{Latitude: 22.8, Longitude: 89.5}, stored.Location)
			f.uploader.AssertNumberOfCalls(t, "Upload", n)
		})
	}
}

func TestCreateComplaint_InvalidCoordinatesNoSideEffects(t *testing.T) {
	cases := []struct{ lat, lng string }{
		{"", "89.5"},
		{"22.8", ""},
		{"north", "89.5"},
		{"22.8", "east"},
		{"NaN", "89.5"},
		{"22.8", "Inf"},
		{"91", "89.5"},
		{"22.8", "-180.5"},
	}
	for _, tc := range cases {
		t.Run(tc.lat+"/"+tc.lng, func(t *testing.T) {
			f := newFixture(t)
			in := validInput(2)
			in.Latitude, in.Longitude = tc.lat, tc.lng

			_, err := f.svc.CreateComplaint(context.Background(), f.student, in)

			require.Error(t, err)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
			assert.Equal(t, "invalid or missing location coordinates", apperr.PublicMessage(err))
			f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
			f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
			assert.Equal(t, 0, f.store.ComplaintCount())
		})
	}
}

func TestCreateComplaint_FieldValidation(t *testing.T) {
	f := newFixture(t)

	noTitle := validInput(0)
	noTitle.Title = "   "
	_, err := f.svc.CreateComplaint(context.Background(), f.student, noTitle)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	noDescription := validInput(0)
	noDescription.Description = ""
	_, err = f.svc.CreateComplaint(context.Background(), f.student, noDescription)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	multiline := validInput(0)
	multiline.Title = "Theft\r\nBcc: eve@evil.test"
	_, err = f.svc.CreateComplaint(context.Background(), f.student, multiline)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	tooMany := validInput(6)
	_, err = f.svc.CreateComplaint(context.Background(), f.student, tooMany)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	f.uploader.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
	assert.Equal(t, 0, f.store.ComplaintCount())
}

func TestCreateComplaint_DefaultCategory(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	in := validInput(0)
	in.Category = ""

	c, err := f.svc.CreateComplaint(context.Background(), f.student, in)

	require.NoError(t, err)
	assert.Equal(t, "Other", c.Category)
}

func TestCreateComplaint_UploadFailureLeavesNoRecord(t *testing.T) {
	f := newFixture(t)
	f.uploader.On("Upload", mock.Anything, mock.MatchedBy(func(file upload.File) bool { return file.Name == "img2.png" })).
		Return("", errors.New("cloud unavailable"))
	f.uploader.On("Upload", mock.Anything, mock.Anything).Return("https://cdn.example/ok", nil)

	_, err := f.svc.CreateComplaint(context.Background(), f.student, validInput(3))

	require.Error(t, err)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Equal(t, 0, f.store.ComplaintCount())
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

func TestCreateComplaint_NotificationFailureDoesNotFailCreate(t *testing.T) {
	f := newFixture(t)
	f.notifier.On("Notify", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.Kind == models.NotificationComplaintSubmitted && n.To == "alice@x.com" && n.Status == models.StatusPending
	})).Return(errors.New("redis down")).Once()
	f.publisher.On("Publish", mock.Anything, mock.MatchedBy(func(ev models.ComplaintEvent) bool {
		return ev.Type == models.EventComplaintCreated
	})).Return(errors.New("redis down")).Once()

	c, err := f.svc.CreateComplaint(context.Background(), f.student, validInput(0))

	require.NoError(t, err)
	assert.Equal(t, 1, f.store.ComplaintCount())
	assert.NotEmpty(t, c.ID)
	f.notifier.AssertExpectations(t)
	f.publisher.AssertExpectations(t)
}

func TestGetMyComplaints_OnlyOwnNewestFirst(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()

	first := validInput(0)
	first.Title = "first"
	second := validInput(0)
	second.Title = "second"
	_, err := f.svc.CreateComplaint(ctx, f.student, first)
	require.NoError(t, err)
	_, err = f.svc.CreateComplaint(ctx, f.other, validInput(0))
	require.NoError(t, err)
	_, err = f.svc.CreateComplaint(ctx, f.student, second)
	require.NoError(t, err)

	mine, err := f.svc.GetMyComplaints(ctx, f.student)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, "second", mine[0].Title)
	assert.Equal(t, "first", mine[1].Title)
	for _, c := range mine {
		assert.Equal(t, f.student.UserID, c.UserID)
	}

	theirs, err := f.svc.GetMyComplaints(ctx, f.other)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, f.other.UserID, theirs[0].UserID)
}

func TestGetAllComplaints_RolesAndSorting(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()

	for _, tc := range []struct{ title, category string }{
		{"b-title", "Theft"},
		{"c-title", "Vandalism"},
		{"a-title", "Theft"},
	} {
		in := validInput(0)
		in.Title, in.Category = tc.title, tc.category
		_, err := f.svc.CreateComplaint(ctx, f.student, in)
		require.NoError(t, err)
	}

	_, err := f.svc.GetAllComplaints(ctx, f.student, complaint.ListQuery{})
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	titles := func(list []models.Complaint) []string {
		out := make([]string, len(list))
		for i, c := range list {
			out[i] = c.Title
		}
		return out
	}

	newest, err := f.svc.GetAllComplaints(ctx, f.admin, complaint.ListQuery{})
	require.NoError(t, err)
	assert.Equal(t, []string{"a-title", "c-title", "b-title"}, titles(newest))
	require.NotNil(t, newest[0].Owner)
	assert.Equal(t, "Alice", newest[0].Owner.Name)
	assert.Equal(t, "alice@x.com", newest[0].Owner.Email)

	oldest, err := f.svc.GetAllComplaints(ctx, f.authority, complaint.ListQuery{SortBy: "oldest"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b-title", "c-title", "a-title"}, titles(oldest))

	byTitle, err := f.svc.GetAllComplaints(ctx, f.admin, complaint.ListQuery{SortBy: "title"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a-title", "b-title", "c-title"}, titles(byTitle))

	theft, err := f.svc.GetAllComplaints(ctx, f.admin, complaint.ListQuery{Category: "Theft"})
	require.NoError(t, err)
	assert.Equal(t, []string{"a-title", "b-title"}, titles(theft))

	_, err = f.svc.GetAllComplaints(ctx, f.admin, complaint.ListQuery{SortBy: "popularity"})
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestGetAllComplaints_SortByStatus(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()

	ids := make([]string, 3)
	for i := range ids {
		c, err := f.svc.CreateComplaint(ctx, f.student, validInput(0))
		require.NoError(t, err)
		ids[i] = c.ID
	}
	_, err := f.svc.UpdateComplaintStatus(ctx, f.admin, ids[0], "Under Review")
	require.NoError(t, err)
	_, err = f.svc.UpdateComplaintStatus(ctx, f.admin, ids[1], "Resolved")
	require.NoError(t, err)

	list, err := f.svc.GetAllComplaints(ctx, f.admin, complaint.ListQuery{SortBy: "status"})
	require.NoError(t, err)
	got := []models.Status{list[0].Status, list[1].Status, list[2].Status}
	assert.Equal(t, []models.Status{models.StatusPending, models.StatusResolved, models.StatusUnderReview}, got)
}

func TestUpdateComplaintStatus_InvalidStatusNeverMutates(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	c, err := f.svc.CreateComplaint(ctx, f.student, validInput(0))
	require.NoError(t, err)

	for _, bad := range []string{"", "pending", "PENDING", "Closed", "under review", "Resolved ", "resolved"} {
		_, err := f.svc.UpdateComplaintStatus(ctx, f.admin, c.ID, bad)
		assert.Equal(t, apperr.KindValidation, apperr.KindOf(err), bad)
	}

	stored, err := f.store.GetComplaintByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestUpdateComplaintStatus_StudentForbidden(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	c, err := f.svc.CreateComplaint(ctx, f.student, validInput(0))
	require.NoError(t, err)

	for _, id := range []string{c.ID, "missing", ""} {
		for _, status := range []string{"Resolved", "bogus"} {
			_, err := f.svc.UpdateComplaintStatus(ctx, f.student, id, status)
			assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
		}
	}

	stored, err := f.store.GetComplaintByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusPending, stored.Status)
}

func TestUpdateComplaintStatus_NotFound(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.UpdateComplaintStatus(context.Background(), f.admin, "does-not-exist", "Resolved")

	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	f.notifier.AssertNotCalled(t, "Notify", mock.Anything, mock.Anything)
}

// Any status may follow any other, including moving backwards.
func TestUpdateComplaintStatus_PermissiveTransitions(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	c, err := f.svc.CreateComplaint(ctx, f.student, validInput(0))
	require.NoError(t, err)

	for _, next := range []string{"Resolved", "Pending", "Under Review", "Pending", "Resolved", "Under Review"} {
		updated, err := f.svc.UpdateComplaintStatus(ctx, f.authority, c.ID, next)
		require.NoError(t, err, next)
		assert.Equal(t, models.Status(next), updated.Status)
	}
}

func TestUpdateComplaintStatus_IdempotentAndNotifies(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	c, err := f.svc.CreateComplaint(ctx, f.student, validInput(0))
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		updated, err := f.svc.UpdateComplaintStatus(ctx, f.admin, c.ID, "Resolved")
		require.NoError(t, err)
		assert.Equal(t, models.StatusResolved, updated.Status)
	}

	stored, err := f.store.GetComplaintByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusResolved, stored.Status)
	f.notifier.AssertCalled(t, "Notify", mock.Anything, mock.MatchedBy(func(n models.Notification) bool {
		return n.Kind == models.NotificationComplaintStatusChanged && n.Status == models.StatusResolved && n.To == "alice@x.com"
	}))
	f.publisher.AssertCalled(t, "Publish", mock.Anything, mock.MatchedBy(func(ev models.ComplaintEvent) bool {
		return ev.Type == models.EventComplaintStatusChanged && ev.ComplaintID == c.ID
	}))
}

func TestUpdateComplaintStatus_NotifyFailureKeepsUpdate(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	c, err := f.svc.CreateComplaint(ctx, f.student, validInput(0))
	require.NoError(t, err)

	failing := new(MockDispatcher)
	failing.On("Notify", mock.Anything, mock.Anything).Return(errors.New("smtp down"))
	f.svc.Notifier = failing

	updated, err := f.svc.UpdateComplaintStatus(ctx, f.admin, c.ID, "Under Review")

	require.NoError(t, err)
	assert.Equal(t, models.StatusUnderReview, updated.Status)
	failing.AssertNumberOfCalls(t, "Notify", 1)
}

func TestGetComplaintMarkers(t *testing.T) {
	f := newFixture(t)
	f.expectSideEffects()
	ctx := context.Background()
	_, err := f.svc.CreateComplaint(ctx, f.student, validInput(0))
	require.NoError(t, err)
	other := validInput(0)
	other.Category, other.Latitude, other.Longitude = "Vandalism", "-10", "20"
	_, err = f.svc.CreateComplaint(ctx, f.student, other)
	require.NoError(t, err)

	_, err = f.svc.GetComplaintMarkers(ctx, f.student, "")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	all, err := f.svc.GetComplaintMarkers(ctx, f.admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	vandalism, err := f.svc.GetComplaintMarkers(ctx, f.authority, "Vandalism")
	require.NoError(t, err)
	require.Len(t, vandalism, 1)
	assert.Equal(t, -10.0, vandalism[0].Latitude)
	assert.Equal(t, 20.0, vandalism[0].Longitude)
}
