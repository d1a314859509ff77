package bridge

import (
	"context"
	"encoding/json"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/dukex/decmed/pkg/otelhelper"
)

type tracedInvoker struct {
	next   Invoker
	tracer trace.Tracer
}

// Traced wraps next so each command runs inside its own span.
func Traced(next Invoker, tracer trace.Tracer) Invoker {
	return &tracedInvoker{next: next, tracer: tracer}
}

func (t *tracedInvoker) Invoke(ctx context.Context, command string, args any) (json.RawMessage, error) {
	ctx, span := otelhelper.StartSpan(ctx, t.tracer, "bridge.invoke",
		attribute.String(otelhelper.CommandKey, command),
	)
	defer span.End()

	raw, err := t.next.Invoke(ctx, command, args)
	if err != nil {
		var attrs []attribute.KeyValue
		if code, ok := RedirectCodeOf(err); ok {
			attrs = append(attrs, attribute.Int(otelhelper.RedirectCodeKey, int(code)))
		}

		otelhelper.SetError(span, err, attrs...)

		return nil, err
	}

	span.SetStatus(codes.Ok, "")

	return raw, nil
}
