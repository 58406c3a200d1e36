package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLikeContains(t *testing.T) {
	assert.Equal(t, "%1-7%", LikeContains("1-7"))
	assert.Equal(t, "%50!%!_off!!%", LikeContains("50%_off!"))
}

func TestStripNameQuotes(t *testing.T) {
	assert.Equal(t, "能天使", StripNameQuotes(`“能天使”`))
	assert.Equal(t, "Texas", StripNameQuotes(`"Texas"`))
}

func TestSplitOperators(t *testing.T) {
	include, exclude := SplitOperators(" 能天使, ~艾雅法拉 ,,~ ,银灰")
	assert.Equal(t, []string{"能天使", "银灰"}, include)
	assert.Equal(t, []string{"艾雅法拉"}, exclude)

	include, exclude = SplitOperators("")
	assert.Empty(t, include)
	assert.Empty(t, exclude)
}

func TestValidateDTO(t *testing.T) {
	type req struct {
		ID int64 `validate:"required,gt=0"`
	}
	assert.NoError(t, ValidateDTO(&req{ID: 1}))
	assert.Error(t, ValidateDTO(&req{}))
}

func TestValidateDTOUsesJSONFieldPath(t *testing.T) {
	type oper struct {
		Name string `json:"name" validate:"required"`
	}
	type content struct {
		StageName string `json:"stage_name" validate:"required"`
		Opers     []oper `json:"opers" validate:"dive"`
	}

	err := ValidateDTO(&content{StageName: "1-7", Opers: []oper{{Name: "银灰"}, {}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "content.opers[1].name")
	assert.Contains(t, err.Error(), "required")
}
