package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/inventory-etl/pkg/zerror"
)

func TestZError(t *testing.T) {
	base := zerror.NewUnauthorized("AUTHENTICATION_FAILED", "authentication failed")

	t.Run("Should match template through wrapping", func(t *testing.T) {
		cause := errors.New("access denied")
		err := fmt.Errorf("authenticate: %w", base.WrapParent(cause))

		assert.ErrorIs(t, err, base)
		assert.ErrorIs(t, err, cause)
		assert.NotErrorIs(t, err, zerror.NewUnavailable("TRANSPORT_ERROR", "transport error"))
	})

	t.Run("Should expose fields", func(t *testing.T) {
		var zErr zerror.ZError
		err := fmt.Errorf("outer: %w", base)

		assert.True(t, errors.As(err, &zErr))
		assert.Equal(t, "AUTHENTICATION_FAILED", zErr.Code())
		assert.Equal(t, zerror.StatusUnauthorized, zErr.Status())
		assert.Equal(t, "UNAUTHORIZED", zErr.Status().String())
		assert.Nil(t, zErr.Parent())
	})

	t.Run("Should not replace parent with nil", func(t *testing.T) {
		err := base.WrapParent(nil)
		assert.Equal(t, "Code=AUTHENTICATION_FAILED, Msg=authentication failed", err.Error())
	})
}
