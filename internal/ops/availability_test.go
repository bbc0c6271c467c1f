package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maaackz/folio/internal/content"
	"github.com/maaackz/folio/internal/errors"
)

func TestGetAvailability_Default(t *testing.T) {
	st := newTestStore(t)

	a, err := GetAvailability(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, content.Availability{Status: "i am available for work.", Color: "#00ff00"}, *a)
}

func TestSetAvailability(t *testing.T) {
	st := newTestStore(t)

	out, err := SetAvailability(adminCtx(), st, content.Availability{Status: " busy ", Color: "#f00"})
	require.NoError(t, err)
	assert.Equal(t, content.Availability{Status: "busy", Color: "#f00"}, *out)

	got, err := GetAvailability(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, *out, *got)
}

func TestSetAvailability_Validation(t *testing.T) {
	st := newTestStore(t)

	_, err := SetAvailability(adminCtx(), st, content.Availability{Status: "", Color: "#fff"})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = SetAvailability(adminCtx(), st, content.Availability{Status: "busy", Color: ""})
	assert.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = SetAvailability(context.Background(), st, content.Availability{Status: "busy", Color: "#fff"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))

	got, err := GetAvailability(context.Background(), st)
	require.NoError(t, err)
	assert.Equal(t, content.DefaultAvailability(), *got)
}

func TestTags(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	tags, err := GetTags(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, []string{}, tags)

	out, err := SetTags(adminCtx(), st, []string{" go ", "web", "", "go"})
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, out)

	tags, err = GetTags(ctx, st)
	require.NoError(t, err)
	assert.Equal(t, []string{"go", "web"}, tags)

	_, err = SetTags(ctx, st, []string{"x"})
	assert.True(t, errors.Is(err, errors.ErrUnauthorized))
}
