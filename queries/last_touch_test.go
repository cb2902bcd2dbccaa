package queries

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/smartcontractkit/chainlink-data-streams/events"
)

func alwaysRelevant(events.SimpleEvent) bool { return true }

func TestLastTouch_ReturnsLastEventOfFirstNonEmptyEpoch(t *testing.T) {
	req := NewSimpleLastTouch(1, 2, decimal.NewFromInt(3), 1.0, alwaysRelevant)

	perEpoch := map[int]events.EpochEvents[events.SimpleEvent]{
		2: {{ID: 1, EpochNumber: 2, EventKey: 5}, {ID: 2, EpochNumber: 2, EventKey: 7}},
	}

	report := req.ComputeReport(perEpoch)
	if assert.NotNil(t, report) {
		assert.Equal(t, 7, report.Key)
		assert.True(t, report.Value.Equal(decimal.NewFromInt(3)))
	}
}

func TestLastTouch_EmptyEveryEpochReturnsNilReport(t *testing.T) {
	req := NewSimpleLastTouch(1, 3, decimal.NewFromInt(3), 1.0, alwaysRelevant)

	report := req.ComputeReport(map[int]events.EpochEvents[events.SimpleEvent]{})
	assert.Nil(t, report)
}

func TestLastTouch_SkipsEmptyEpochsMostRecentFirst(t *testing.T) {
	req := NewSimpleLastTouch(1, 3, decimal.NewFromInt(3), 1.0, alwaysRelevant)

	perEpoch := map[int]events.EpochEvents[events.SimpleEvent]{
		1: {{ID: 1, EpochNumber: 1, EventKey: 9}},
		// epoch 2 and 3 have no relevant events.
	}

	report := req.ComputeReport(perEpoch)
	if assert.NotNil(t, report) {
		assert.Equal(t, 9, report.Key)
	}
}

func TestLastTouch_SensitivityIsAbsValueOrZero(t *testing.T) {
	req := NewSimpleLastTouch(1, 1, decimal.NewFromInt(70), 1.0, alwaysRelevant)

	present := &LastTouchBin[int]{Key: 1, Value: decimal.NewFromInt(-70)}
	assert.Equal(t, 70.0, req.SingleEpochSensitivity(present, 0))
	assert.Equal(t, 0.0, req.SingleEpochSensitivity(nil, 0))
	assert.Equal(t, 70.0, req.GlobalSensitivity())
}
