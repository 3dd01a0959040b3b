package treediff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/treediff/pkg/treediff"
)

func component(name string, id uint32) treediff.PathComponent {
	return treediff.PathComponent{Name: []byte(name), ID: id}
}

func record(r *treediff.Recorder, action treediff.ChangeAction, id uint32) treediff.Action {
	return r.Record(treediff.Change{Action: action, PathID: id})
}

func TestRecorderReplaceOverwritesCurrentDepth(t *testing.T) {
	recorder := treediff.NewRecorder()

	recorder.UpdatePathComponent(component("first", 1), treediff.PathReplace)
	record(recorder, treediff.Delete, 1)

	recorder.UpdatePathComponent(component("second", 2), treediff.PathReplace)
	record(recorder, treediff.Insert, 2)

	assert.Equal(t, []string{"first", "second"}, recorder.Paths())
}

func TestRecorderPushAndPop(t *testing.T) {
	recorder := treediff.NewRecorder()

	recorder.UpdatePathComponent(component("dir", 1), treediff.PathReplace)
	record(recorder, treediff.Modify, 1)

	recorder.UpdatePathComponent(component("dir", 2), treediff.PathPush)
	recorder.UpdatePathComponent(component("leaf", 3), treediff.PathReplace)
	record(recorder, treediff.Insert, 3)

	recorder.UpdatePathComponent(treediff.PathComponent{}, treediff.PathPop)
	recorder.UpdatePathComponent(component("sibling", 4), treediff.PathReplace)
	record(recorder, treediff.Delete, 4)

	assert.Equal(t, []string{"dir", "dir/leaf", "sibling"}, recorder.Paths())
}

func TestRecorderNestedPushes(t *testing.T) {
	recorder := treediff.NewRecorder()

	recorder.UpdatePathComponent(component("a", 1), treediff.PathReplace)
	recorder.UpdatePathComponent(component("a", 2), treediff.PathPush)
	recorder.UpdatePathComponent(component("b", 3), treediff.PathReplace)
	recorder.UpdatePathComponent(component("b", 4), treediff.PathPush)
	recorder.UpdatePathComponent(component("c", 5), treediff.PathReplace)
	record(recorder, treediff.Insert, 5)

	require.Equal(t, []string{"a/b/c"}, recorder.Paths())
}

func TestRecorderCancelVerdict(t *testing.T) {
	recorder := treediff.NewRecorder()
	recorder.CancelAt = func(rc treediff.RecordedChange) bool {
		return rc.Change.Action == treediff.Delete
	}

	recorder.UpdatePathComponent(component("keep", 1), treediff.PathReplace)
	assert.Equal(t, treediff.Continue, record(recorder, treediff.Insert, 1))

	recorder.UpdatePathComponent(component("stop", 2), treediff.PathReplace)
	assert.Equal(t, treediff.Cancel, record(recorder, treediff.Delete, 2))

	assert.Equal(t, []string{"keep", "stop"}, recorder.Paths())
}

func TestActionCancelled(t *testing.T) {
	assert.False(t, treediff.Continue.Cancelled())
	assert.True(t, treediff.Cancel.Cancelled())
}

func TestChangeActionString(t *testing.T) {
	assert.Equal(t, "A", treediff.Insert.String())
	assert.Equal(t, "D", treediff.Delete.String())
	assert.Equal(t, "M", treediff.Modify.String())
	assert.Equal(t, "?", treediff.ChangeAction(42).String())
}
