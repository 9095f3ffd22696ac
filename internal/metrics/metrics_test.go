package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/DhavalSuthar-24/squadup/internal/common"
)

func TestObserve(t *testing.T) {
	ok := MembershipOperations.WithLabelValues("test_op", "ok")
	conflict := MembershipOperations.WithLabelValues("test_op", "conflict")
	beforeOK, beforeConflict := testutil.ToFloat64(ok), testutil.ToFloat64(conflict)

	assert.NoError(t, Observe("test_op", nil))
	err := common.Conflict("dup")
	assert.Same(t, err, Observe("test_op", err))

	assert.Equal(t, beforeOK+1, testutil.ToFloat64(ok))
	assert.Equal(t, beforeConflict+1, testutil.ToFloat64(conflict))
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", Outcome(nil))
	assert.Equal(t, "not_found", Outcome(common.NotFound("x")))
	assert.Equal(t, "unknown", Outcome(errors.New("x")))
}
