package providers_test

import (
	"testing"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	r := providers.NewRegistry()
	p := newTestStatic(t, "aws")

	err := r.Register(p)
	require.NoError(t, err)

	got, err := r.Get("aws")
	require.NoError(t, err)
	assert.Equal(t, "aws", got.Name())
}

func TestRegistry_DuplicateRegister(t *testing.T) {
	r := providers.NewRegistry()
	p := newTestStatic(t, "aws")

	err := r.Register(p)
	require.NoError(t, err)

	err = r.Register(p)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "already registered")
}

func TestRegistry_GetNotFound(t *testing.T) {
	r := providers.NewRegistry()
	_, err := r.Get("nonexistent")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestRegistry_ListPreservesOrder(t *testing.T) {
	r := providers.NewRegistry()
	_ = r.Register(newTestStatic(t, "gcp"))
	_ = r.Register(newTestStatic(t, "aws"))
	_ = r.Register(newTestStatic(t, "azure"))

	assert.Equal(t, []string{"gcp", "aws", "azure"}, r.List())
}

func TestRegistry_All(t *testing.T) {
	r := providers.NewRegistry()
	_ = r.Register(newTestStatic(t, "aws"))
	_ = r.Register(newTestStatic(t, "gcp"))

	all := r.All()
	require.Len(t, all, 2)
	assert.Equal(t, "aws", all[0].Name())
	assert.Equal(t, "gcp", all[1].Name())
}
