package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/medtalks/website/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockPartnershipRepository is a mock implementation of PartnershipRepository
type mockPartnershipRepository struct {
	// taken reports the first n reference checks as already used
	taken     int
	checks    int
	existsErr error
	createErr error

	stored []models.PartnershipApplication
	meta   []models.ApplicationMetadata
}

func (m *mockPartnershipRepository) ReferenceNumberExists(ctx context.Context, ref string) (bool, error) {
	if m.existsErr != nil {
		return false, m.existsErr
	}
	m.checks++
	return m.checks <= m.taken, nil
}

func (m *mockPartnershipRepository) CreatePartnershipApplication(ctx context.Context, app *models.PartnershipApplication, meta models.ApplicationMetadata) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.stored = append(m.stored, *app)
	m.meta = append(m.meta, meta)
	return nil
}

// sequenceReader yields the same byte forever
type sequenceReader byte

func (r sequenceReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = byte(r)
	}
	return len(p), nil
}

func fixedReferences() *ReferenceGenerator {
	return &ReferenceGenerator{
		now:    func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) },
		random: sequenceReader(0),
	}
}

func TestPartnershipService_Submit(t *testing.T) {
	tests := []struct {
		name          string
		raw           map[string]any
		mockRepo      *mockPartnershipRepository
		expectInvalid bool
		expectedError error
		expectedCheck int
	}{
		{
			name:          "success",
			raw:           validApplication(),
			mockRepo:      &mockPartnershipRepository{},
			expectedCheck: 1,
		},
		{
			name:          "retries taken reference numbers",
			raw:           validApplication(),
			mockRepo:      &mockPartnershipRepository{taken: 4},
			expectedCheck: 5,
		},
		{
			name:          "gives up after five collisions",
			raw:           validApplication(),
			mockRepo:      &mockPartnershipRepository{taken: 5},
			expectedError: ErrReferenceUnavailable,
			expectedCheck: 5,
		},
		{
			name:          "invalid application is not stored",
			raw:           with(map[string]any{"email": "nope"}),
			mockRepo:      &mockPartnershipRepository{},
			expectInvalid: true,
		},
		{
			name:          "store failure",
			raw:           validApplication(),
			mockRepo:      &mockPartnershipRepository{createErr: errors.New("database error")},
			expectedError: errors.New("database error"),
			expectedCheck: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPartnershipService(tt.mockRepo, fixedReferences(), nil, zap.NewNop())

			ref, err := svc.Submit(context.Background(), tt.raw, "203.0.113.7")

			assert.Equal(t, tt.expectedCheck, tt.mockRepo.checks)
			switch {
			case tt.expectInvalid:
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "Please fix the highlighted errors and try again.", verr.Message)
				assert.Contains(t, verr.Fields, "email")
				assert.Empty(t, ref)
				assert.Empty(t, tt.mockRepo.stored)
			case tt.expectedError != nil:
				assert.Error(t, err)
				assert.True(t, errors.Is(err, tt.expectedError) || strings.Contains(err.Error(), tt.expectedError.Error()))
				assert.Empty(t, ref)
			default:
				require.NoError(t, err)
				assert.Equal(t, "MT-20250301-AAAAA", ref)
				require.Len(t, tt.mockRepo.stored, 1)
				assert.Equal(t, "ada.lovelace@example.com", tt.mockRepo.stored[0].Email)
				assert.Equal(t, models.ApplicationMetadata{ReferenceNumber: ref, IPAddress: "203.0.113.7"}, tt.mockRepo.meta[0])
			}
		})
	}
}

func TestPartnershipService_ReferenceLookupFailure(t *testing.T) {
	repo := &mockPartnershipRepository{existsErr: errors.New("unavailable")}
	svc := NewPartnershipService(repo, fixedReferences(), nil, zap.NewNop())

	ref, err := svc.Submit(context.Background(), validApplication(), "")

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check reference number")
	assert.Empty(t, ref)
	assert.Empty(t, repo.stored)
}

// recordingNotifier records the applications it was told about
type recordingNotifier struct {
	refs []string
	apps []*models.PartnershipApplication
}

func (n *recordingNotifier) PartnershipSubmitted(ctx context.Context, ref string, app *models.PartnershipApplication) {
	n.refs = append(n.refs, ref)
	n.apps = append(n.apps, app)
}

func TestPartnershipService_Notifies(t *testing.T) {
	t.Run("accepted application", func(t *testing.T) {
		notifier := &recordingNotifier{}
		svc := NewPartnershipService(&mockPartnershipRepository{}, fixedReferences(), notifier, zap.NewNop())

		ref, err := svc.Submit(context.Background(), validApplication(), "")

		require.NoError(t, err)
		assert.Equal(t, []string{ref}, notifier.refs)
		require.Len(t, notifier.apps, 1)
		assert.Equal(t, "Ada O'Neil-Smith", notifier.apps[0].FullName())
	})

	t.Run("storage failure", func(t *testing.T) {
		notifier := &recordingNotifier{}
		svc := NewPartnershipService(&mockPartnershipRepository{createErr: errors.New("database error")}, fixedReferences(), notifier, zap.NewNop())

		_, err := svc.Submit(context.Background(), validApplication(), "")

		assert.Error(t, err)
		assert.Empty(t, notifier.refs)
	})
}
