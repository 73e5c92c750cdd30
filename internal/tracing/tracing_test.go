package tracing

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
)

func TestInitExportsSpans(t *testing.T) {
	var buf bytes.Buffer
	shutdown, err := Init("expense-review-test", "0.0.0", &buf)
	require.NoError(t, err)

	_, span := StartSpan(context.Background(), "validate", attribute.String("expense_id", "RCP001"))
	EndSpan(span, errors.New("gate failed"))

	_, ok := StartSpan(context.Background(), "review")
	EndSpan(ok, nil)

	require.NoError(t, shutdown(context.Background()))

	out := buf.String()
	assert.Contains(t, out, `"Name":"validate"`)
	assert.Contains(t, out, "RCP001")
	assert.Contains(t, out, "gate failed")
	assert.Contains(t, out, `"Name":"review"`)
}
