package saga

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestContext_String(t *testing.T) {
	id := bson.NewObjectID()
	c := Context{"userId": id, "planId": "Premium", "count": 3}

	assert.Equal(t, id.Hex(), c.String("userId"))
	assert.Equal(t, "Premium", c.String("planId"))
	assert.Empty(t, c.String("count"))
	assert.Empty(t, c.String("missing"))
}

func TestNextStep(t *testing.T) {
	s := &Saga{Steps: []Step{{Name: "a", Status: StepDone}, {Name: "b", Status: StepFailed}, {Name: "c", Status: StepPending}}}
	assert.Equal(t, 1, nextStep(s))

	s.Steps[1].Status = StepDone
	s.Steps[2].Status = StepDone
	assert.Equal(t, -1, nextStep(s))
}

func TestNewStepRegistry(t *testing.T) {
	noop := StepFunc(func(context.Context, Context) error { return nil })

	r, err := NewStepRegistry(NamedStep{Name: "b", Handler: noop}, NamedStep{Name: "a", Handler: noop})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, r.Names())

	_, err = NewStepRegistry(NamedStep{Name: "a", Handler: noop}, NamedStep{Name: "a", Handler: noop})
	assert.ErrorContains(t, err, "duplicate")

	_, err = NewStepRegistry(NamedStep{Handler: noop})
	assert.Error(t, err)
}

func TestUpdateDocument(t *testing.T) {
	s := &Saga{Status: StatusCompleted, Steps: []Step{{Name: "a", Status: StepDone}}}

	doc := updateDocument(s)

	set := doc["$set"].(bson.M)
	assert.Equal(t, StatusCompleted, set["status"])
	assert.Equal(t, s.Steps, set["steps"])
	assert.Equal(t, bson.M{"lastError": "", "claimedBy": "", "leaseExpiresAt": ""}, doc["$unset"])
}
