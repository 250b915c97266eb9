package crash

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"barracuda/internal/config/logger"
)

func Test_NoopReporter_ReportFatal_DoesNotPanic(t *testing.T) {
	r := NewNoopReporter(logger.NewNoopLogger())

	assert.NotPanics(t, func() {
		r.ReportFatal(errors.New("duplicate SUD"), map[string]string{"module": "iomanager"})
	})
}

func Test_NoopReporter_ReportFatal_NilTags(t *testing.T) {
	r := NewNoopReporter(logger.NewNoopLogger())

	assert.NotPanics(t, func() {
		r.ReportFatal(errors.New("boot barrier timeout"), nil)
	})
}
