package event

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/savings/backend/internal/domain/contribution"
	"github.com/savings/backend/internal/domain/identity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventSerializer_ReadsBackRegisteredEvents(t *testing.T) {
	s := NewSavingsSerializer()

	c, err := contribution.NewContribution(uuid.New(), uuid.New(), decimal.RequireFromString("125.50"), contribution.Metadata{}, testNow)
	require.NoError(t, err)
	c.PointsEarned = 12
	c.StreakCount = 3
	want := contribution.NewContributionConfirmedEvent(c)

	payload, err := s.Serialize(want)
	require.NoError(t, err)

	got, err := s.Deserialize(contribution.EventTypeContributionConfirmed, payload)
	require.NoError(t, err)

	confirmed, ok := got.(*contribution.ContributionConfirmedEvent)
	require.True(t, ok, "got %T", got)
	if diff := cmp.Diff(want, confirmed); diff != "" {
		t.Errorf("event mismatch (-want +got):\n%s", diff)
	}
}

func TestEventSerializer_UnknownType(t *testing.T) {
	s := NewEventSerializer()
	_, err := s.Deserialize("Nope", []byte(`{}`))
	assert.ErrorContains(t, err, "unknown event type")
}

func TestEventSerializer_MalformedPayload(t *testing.T) {
	s := NewSavingsSerializer()
	_, err := s.Deserialize(identity.EventTypeUserRegistered, []byte(`{"id":`))
	assert.Error(t, err)
}

func TestRegisterAllEvents(t *testing.T) {
	s := NewSavingsSerializer()

	types := s.RegisteredTypes()
	assert.Len(t, types, 21)
	assert.IsIncreasing(t, types)
	for _, eventType := range []string{
		identity.EventTypeBadgeAwarded,
		contribution.EventTypeContributionConfirmed,
		"GroupMemberJoined",
		"GoalMilestoneAchieved",
	} {
		assert.True(t, s.IsRegistered(eventType), eventType)
	}
}
