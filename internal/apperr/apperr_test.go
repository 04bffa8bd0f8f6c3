package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindsSurviveWrapping(t *testing.T) {
	err := fmt.Errorf("create contact: %w", Conflict("email %q already exists", "a@b.co"))
	assert.True(t, errors.Is(err, ErrConflict))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Contains(t, err.Error(), "a@b.co")

	unavailable := Unavailable(errors.New("disk gone"))
	assert.True(t, errors.Is(unavailable, ErrStorageUnavailable))
	assert.Contains(t, unavailable.Error(), "disk gone")
}

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{Validation("bad id"), http.StatusBadRequest},
		{NotFound("contact", 7), http.StatusNotFound},
		{Conflict("dup"), http.StatusConflict},
		{Unavailable(errors.New("x")), http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), "err=%v", c.err)
	}
}
