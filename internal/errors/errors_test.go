package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"autotable/domain/core"
)

func TestWrapKeepsCode(t *testing.T) {
	base := InvalidInput("bad data file")
	err := Wrapf(base, "loading %s", "data.csv")

	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.True(t, stderrors.Is(err, base))
	assert.Equal(t, "loading data.csv: bad data file", err.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestFromDomain(t *testing.T) {
	cfgErr := core.NewUnknownColumnError("regressor", "age")
	err := FromDomain(cfgErr, "report demographics")
	assert.Equal(t, CodeConfigInvalid, GetCode(err))
	assert.ErrorIs(t, err, core.ErrUnknownColumn)

	other := FromDomain(fmt.Errorf("disk full"), "saving")
	assert.Equal(t, CodeInternalError, GetCode(other))

	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
	assert.Equal(t, CodeRenderError, GetCode(RenderError("workbook", fmt.Errorf("x"))))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeExternalService, fmt.Errorf("connection refused"))
	assert.Equal(t, CodeExternalService, GetCode(err))
	assert.True(t, IsAppError(err))
}
