package result_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dukex/decmed/pkg/bridge"
	"github.com/dukex/decmed/pkg/result"
)

func TestTry(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		res := result.Try(func() (int, error) { return 42, nil })

		assert.True(t, res.Success)
		assert.Equal(t, 42, res.Data)
		assert.Empty(t, res.Error)
		assert.NoError(t, res.Err())
	})

	t.Run("error is stringified", func(t *testing.T) {
		res := result.Try(func() (int, error) { return 0, errors.New("boom") })

		assert.False(t, res.Success)
		assert.Equal(t, "boom", res.Error)
		assert.EqualError(t, res.Err(), "boom")
	})

	t.Run("panic is recovered", func(t *testing.T) {
		res := result.Try(func() (string, error) { panic("kaput") })

		assert.False(t, res.Success)
		assert.Equal(t, "kaput", res.Error)
	})

	t.Run("runs exactly once", func(t *testing.T) {
		calls := 0
		result.Try(func() (int, error) {
			calls++
			return 0, errors.New("fail")
		})

		assert.Equal(t, 1, calls)
	})
}

func TestResult_RedirectCode(t *testing.T) {
	res := result.Fail[int](bridge.NewCommandError(bridge.CmdAuthStatus, "profile missing $<3>$"))
	code, ok := res.RedirectCode()
	require.True(t, ok)
	assert.Equal(t, bridge.CodeCompleteProfile, code)

	plain := result.Fail[int](errors.New("wrapped $<1>$"))
	code, ok = plain.RedirectCode()
	require.True(t, ok)
	assert.Equal(t, bridge.CodeSignup, code)

	_, ok = result.Ok(1).RedirectCode()
	assert.False(t, ok)
}

func TestResult_JSON(t *testing.T) {
	body, err := json.Marshal(result.Fail[string](errors.New("Invalid PIN")))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":false,"error":"Invalid PIN"}`, string(body))
}

func TestInvoke(t *testing.T) {
	mux := bridge.NewMux()
	mux.Handle(bridge.CmdGetProfile, func(_ context.Context, _ json.RawMessage) (any, error) {
		return map[string]any{"id": "abc", "iotaAddress": "0x1", "prePublicKey": "pk", "name": "Ana"}, nil
	})
	mux.Handle(bridge.CmdSignin, func(_ context.Context, _ json.RawMessage) (any, error) {
		return nil, errors.New("Seed words mismatch")
	})

	type profile struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}

	ok := result.Invoke[profile](context.Background(), mux, bridge.CmdGetProfile, nil)
	require.True(t, ok.Success)
	assert.Equal(t, "Ana", ok.Data.Data.Name)
	assert.Equal(t, bridge.StatusSuccess, ok.Data.Status)

	failed := result.Exec(context.Background(), mux, bridge.CmdSignin, bridge.Args{"seedWords": "a b"})
	require.False(t, failed.Success)
	assert.Equal(t, "Seed words mismatch", failed.Error)
	assert.True(t, bridge.IsCommandError(failed.Err()))
}
