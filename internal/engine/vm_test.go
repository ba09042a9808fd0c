package engine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/acsvm/acsvm/api"
	"github.com/acsvm/acsvm/internal/acsmod"
)

func TestInt32Vector_OutOfRangeReadsZero(t *testing.T) {
	var v Int32Vector
	require.Equal(t, int32(0), v.Get(0))
	require.Equal(t, int32(0), v.Get(500))
}

func TestInt32Vector_SetGrowsWithSlack(t *testing.T) {
	var v Int32Vector
	v.Set(5, 42)
	require.Equal(t, int32(42), v.Get(5))
	require.Equal(t, 5+1+arrayGrowSlack, v.Cap())
	require.Equal(t, int32(0), v.Get(6)) // newly grown cells are zeroed

	v.Set(3, 7) // within existing capacity: no regrow, no data loss
	require.Equal(t, int32(42), v.Get(5))
	require.Equal(t, int32(7), v.Get(3))
}

func TestVM_ActiveInstanceByNumber(t *testing.T) {
	m, s := newTestModule(t, nil)
	vm := New(Config{}, []*acsmod.Module{m})

	a := NewInstance(s)
	a.State = api.StateRunning
	b := NewInstance(s)
	b.State = api.StateTerminated
	vm.RegisterInstance(a)
	vm.RegisterInstance(b)

	require.Equal(t, a, vm.ActiveInstanceByNumber(s.Number, nil))
	require.Nil(t, vm.ActiveInstanceByNumber(s.Number, a)) // excludes itself, b is terminated
}

func TestVM_ResumeSuspended(t *testing.T) {
	m, s := newTestModule(t, nil)
	vm := New(Config{}, []*acsmod.Module{m})

	inst := NewInstance(s)
	inst.State = api.StateSuspended
	vm.Suspended = append(vm.Suspended, inst)

	require.False(t, vm.ResumeSuspended(s.Number+1))
	require.True(t, vm.ResumeSuspended(s.Number))
	require.Empty(t, vm.Suspended)
	require.Equal(t, api.StateRunning, inst.State)
}

func TestVM_UnregisterInstance(t *testing.T) {
	m, s := newTestModule(t, nil)
	vm := New(Config{}, []*acsmod.Module{m})

	a := NewInstance(s)
	b := NewInstance(s)
	vm.RegisterInstance(a)
	vm.RegisterInstance(b)
	vm.UnregisterInstance(a)

	require.Equal(t, []*Instance{b}, vm.Live)
}
