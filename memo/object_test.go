package memo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/on-the-ground/memo_ive_go/bind"
	"github.com/on-the-ground/memo_ive_go/logkeys"
	"github.com/on-the-ground/memo_ive_go/memo"
)

func TestObject_LockedRefusesMutation(t *testing.T) {
	a := NewPartialSum(5)
	a.Lock()
	_, _ = a.Add(3)

	assert.ErrorIs(t, a.Mutate(), memo.ErrLockedMutation)
	assert.ErrorIs(t, a.SetStored(1), memo.ErrLockedMutation)
	assert.Equal(t, 5, a.stored)

	ok, err := partialAdd.For(a).Contains(3)
	require.NoError(t, err)
	assert.True(t, ok, "a refused mutation clears nothing")

	require.NoError(t, memo.Set(a, "calls", &a.calls, 10), "exempt attributes bypass the guard")
	assert.Equal(t, 10, a.calls)

	a.Unlock(false)
	require.NoError(t, a.Mutate())
	ok, _ = partialAdd.For(a).Contains(3)
	assert.False(t, ok)
}

func TestObject_ExemptWriteKeepsCaches(t *testing.T) {
	a := NewPartialSum(5)
	_, _ = a.Add(3)
	require.NoError(t, memo.Set(a, "calls", &a.calls, 0))
	_, _ = a.Add(3)
	assert.Equal(t, 0, a.calls)
}

func TestObject_LockedScopeIsReentrant(t *testing.T) {
	a := NewPartialSum(5)

	outer := a.LockedScope(true)
	inner := a.LockedScope(true)
	inner.Close()
	assert.True(t, a.IsLocked())

	outer.Close()
	outer.Close()
	assert.False(t, a.IsLocked())
}

func TestObject_WithLockedReleasesOnPanic(t *testing.T) {
	a := NewPartialSum(5)

	assert.Panics(t, func() {
		_ = a.WithLocked(true, func() error { panic("boom") })
	})
	assert.False(t, a.IsLocked())
}

func TestObject_UnlockedScope(t *testing.T) {
	a := NewPartialSum(5)
	a.Lock()
	_, _ = a.Add(3)

	err := a.WithUnlocked(true, func() error {
		assert.False(t, a.IsLocked())
		require.NoError(t, a.SetStored(6))
		_, _ = a.Add(3)
		_, _ = a.Add(3)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, a.calls, "caches are disabled inside")
	assert.True(t, a.IsLocked(), "the prior lock is restored")

	v, _ := a.Add(3)
	assert.Equal(t, 9, v)
	_, _ = a.Add(3)
	assert.Equal(t, 4, a.calls)
}

func TestObject_CachesCreatedWhileDisabled(t *testing.T) {
	a := NewPartialSum(5)
	a.DisableCaches(false)
	assert.False(t, partialAdd.For(a).IsEnabled())

	a.EnableCaches(false)
	assert.True(t, partialAdd.For(a).IsEnabled())
}

type Provider struct {
	memo.Object
	values   []int
	receiver *Receiver
}

type Receiver struct {
	memo.Object
	provider *Provider
}

var receiverAppend = memo.NewMethod("Append", bind.Positional(1),
	func(r *Receiver, args bind.Args) ([]int, error) {
		out := append([]int(nil), r.provider.values...)
		return append(out, bind.MustValue[[]int](args, "arg0")...), nil
	}, memo.Locking(false))

func newProviderReceiver(wired bool, values ...int) (*Provider, *Receiver) {
	p := &Provider{values: values}
	p.Object = memo.NewObject[Provider](memo.MutatesWith(func() []memo.Owner {
		if p.receiver == nil {
			return nil
		}
		return []memo.Owner{p.receiver}
	}))
	r := &Receiver{Object: memo.NewObject[Receiver](), provider: p}
	if wired {
		p.receiver = r
	}
	return p, r
}

func TestMutatesWith_Unwired(t *testing.T) {
	p, r := newProviderReceiver(false, 1, 2, 3)

	v, err := receiverAppend.Call(r, []int{4, 5})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, v)

	require.NoError(t, memo.Set(p, "values", &p.values, []int{2, 3}))
	v, _ = receiverAppend.Call(r, []int{4, 5})
	assert.Equal(t, []int{1, 2, 3, 4, 5}, v, "stale without dependency wiring")
}

func TestMutatesWith_Wired(t *testing.T) {
	p, r := newProviderReceiver(true, 1, 2, 3)

	_, _ = receiverAppend.Call(r, []int{4, 5})
	require.NoError(t, memo.Set(p, "values", &p.values, []int{2, 3}))
	v, _ := receiverAppend.Call(r, []int{4, 5})
	assert.Equal(t, []int{2, 3, 4, 5}, v)
}

func TestMutatesWith_LockedDependentRefuses(t *testing.T) {
	p, r := newProviderReceiver(true, 1)
	r.Lock()
	_, _ = receiverAppend.Call(r, []int{2})

	err := memo.Set(p, "values", &p.values, []int{9})
	assert.ErrorIs(t, err, memo.ErrLockedMutation)
	assert.Equal(t, []int{1}, p.values)
	assert.Equal(t, 1, receiverAppend.For(r).Len())
}

func TestMutating1(t *testing.T) {
	a := NewPartialSum(5)
	grow := memo.Mutating1("Grow", func(s *PartialSum, by int) (int, error) {
		s.stored += by
		return s.stored, nil
	})

	_, _ = a.Add(1)
	v, err := grow(a, 2)
	require.NoError(t, err)
	assert.Equal(t, 7, v)
	got, _ := a.Add(1)
	assert.Equal(t, 8, got)

	a.Lock()
	_, err = grow(a, 2)
	assert.ErrorIs(t, err, memo.ErrLockedMutation)
	assert.Equal(t, 7, a.stored)
}

func TestObject_Logs(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	a := &PartialSum{Object: memo.NewObject[PartialSum](memo.ObjectLogger(zap.New(core)))}

	a.Lock()
	a.Unlock(true)
	require.NoError(t, a.Mutate())

	locked := logs.FilterMessage("memo: locked").All()
	require.Len(t, locked, 1)
	assert.Equal(t, true, locked[0].ContextMap()[logkeys.ObjectLocked])
	unlocked := logs.FilterMessage("memo: unlocked").All()
	require.Len(t, unlocked, 1)
	assert.Equal(t, false, unlocked[0].ContextMap()[logkeys.ObjectLocked])

	mutations := logs.FilterMessage("memo: mutation cleared caches").All()
	require.Len(t, mutations, 1)
	fields := mutations[0].ContextMap()
	assert.Equal(t, "Mutate", fields[logkeys.ObjectOperation])
	assert.Equal(t, "memo_test.PartialSum", fields[logkeys.ObjectType])
	assert.Equal(t, false, fields[logkeys.ObjectClassScoped])
}
