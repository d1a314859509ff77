package web_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/web"
	"github.com/dukex/decmed/pkg/wizard"
)

type stubFlow struct {
	id int
}

func (f *stubFlow) Submit(context.Context, func(out any) error) (wizard.Outcome, error) {
	return wizard.Outcome{}, nil
}

func (f *stubFlow) State() any { return f.id }

func (f *stubFlow) Reset() {}

func TestFlows_ScopedByKeys(t *testing.T) {
	opened := 0
	flows := web.NewFlows().AddScoped("editor", func(context.Context, url.Values) (web.Flow, error) {
		opened++
		return &stubFlow{id: opened}, nil
	}, "accessToken", "patientAddress")

	ctx := context.Background()
	base := url.Values{"accessToken": {"tok"}, "patientAddress": {"0x1"}}
	busted := url.Values{"accessToken": {"tok"}, "patientAddress": {"0x1"}, "_": {"1"}}

	first, err := flows.Get(ctx, "editor", base)
	require.NoError(t, err)

	second, err := flows.Get(ctx, "editor", busted)
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, opened)
	assert.Equal(t, 1, flows.Open())

	other, err := flows.Get(ctx, "editor", url.Values{"accessToken": {"tok"}, "patientAddress": {"0x2"}})
	require.NoError(t, err)
	assert.NotSame(t, first, other)
	assert.Equal(t, 2, flows.Open())
}

func TestFlows_Release(t *testing.T) {
	opened := 0
	flows := web.NewFlows().
		Add("static", &stubFlow{}).
		AddScoped("editor", func(context.Context, url.Values) (web.Flow, error) {
			opened++
			return &stubFlow{id: opened}, nil
		}, "accessToken")

	ctx := context.Background()
	q := url.Values{"accessToken": {"tok"}}

	first, err := flows.Get(ctx, "editor", q)
	require.NoError(t, err)

	flows.Release("editor", url.Values{"accessToken": {"tok"}, "index": {"2"}})
	assert.Zero(t, flows.Open())

	again, err := flows.Get(ctx, "editor", q)
	require.NoError(t, err)
	assert.NotSame(t, first, again)
	assert.Equal(t, 2, opened)

	flows.Release("static", nil)
	static, err := flows.Get(ctx, "static", nil)
	require.NoError(t, err)
	assert.NotNil(t, static)
}
