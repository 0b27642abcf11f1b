// internal/di/container_test.go
package di

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type greeter interface{ Greet() string }

type english struct{}

func (english) Greet() string { return "hello" }

func TestContainerRegisterAndResolve(t *testing.T) {
	c := NewContainer()
	c.Register(ServiceAnalyzer, english{})
	c.Register(ServiceMetrics, 42)

	g, err := Resolve[greeter](c, ServiceAnalyzer)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())

	_, err = Resolve[greeter](c, ServiceMetrics)
	assert.ErrorContains(t, err, "has type int")

	_, err = Resolve[greeter](c, ServiceDemo)
	assert.ErrorContains(t, err, "not registered")

	_, ok := ResolveOptional[greeter](c, ServiceDemo)
	assert.False(t, ok)

	assert.Equal(t, []string{ServiceAnalyzer, ServiceMetrics}, c.GetNames())
}

func TestContainerRemoveAndClear(t *testing.T) {
	c := NewContainer()
	c.Register("a", 1)
	c.Register("b", 2)

	c.Remove("a")
	assert.False(t, c.Has("a"))
	assert.True(t, c.Has("b"))

	c.Clear()
	assert.Empty(t, c.GetNames())
}

func TestGetContainerIsShared(t *testing.T) {
	assert.Same(t, GetContainer(), GetContainer())
}
