package blobstore

import (
	"context"
	"io"
	"math/rand"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"churnscope/domain/core"
	"churnscope/domain/pipeline"
	"churnscope/domain/tabular"
)

func TestFileStoreRoundTrip(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Store(ctx, strings.NewReader("a,b\n1,2\n"), "upload.csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(ref), "upload_"))
	assert.True(t, strings.HasSuffix(string(ref), ".csv"))

	ok, err := store.Exists(ctx, ref)
	require.NoError(t, err)
	assert.True(t, ok)

	r, err := store.Open(ctx, ref)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestFileStoreUniqueNames(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	a, err := store.Store(ctx, strings.NewReader("x"), "same.csv")
	require.NoError(t, err)
	b, err := store.Store(ctx, strings.NewReader("y"), "same.csv")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestFileStoreRejectsPathTraversal(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	ref, err := store.Store(ctx, strings.NewReader("x"), "../../etc/passwd")
	require.NoError(t, err)
	assert.NotContains(t, string(ref), "/")
	assert.True(t, strings.HasPrefix(string(ref), "passwd_"))
}

func TestStoreNamedOverwrites(t *testing.T) {
	store, err := NewLocalFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = store.StoreNamed(ctx, strings.NewReader("first"), "result.csv")
	require.NoError(t, err)
	ref, err := store.StoreNamed(ctx, strings.NewReader("second"), "result.csv")
	require.NoError(t, err)

	r, err := store.Open(ctx, ref)
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Equal(t, "second", string(data))
}

func TestArtifactName(t *testing.T) {
	name := ArtifactName("prediction", ".csv")
	assert.True(t, strings.HasPrefix(name, "prediction_"))
	assert.True(t, strings.HasSuffix(name, ".csv"))
	assert.NotEqual(t, name, ArtifactName("prediction", ".csv"))
}

func fittedPipeline(t *testing.T) (*pipeline.Pipeline, *tabular.Frame) {
	t.Helper()
	rnd := rand.New(rand.NewSource(1))
	n := 80
	age := make([]string, n)
	plan := make([]string, n)
	churn := make([]string, n)
	for i := range age {
		age[i] = strconv.Itoa(20 + rnd.Intn(50))
		plan[i] = []string{"basic", "pro"}[rnd.Intn(2)]
		if plan[i] == "basic" && i%3 == 0 {
			churn[i] = "Yes"
		} else {
			churn[i] = "No"
		}
	}
	f, err := tabular.NewFrame([]tabular.Column{
		{Name: "Age", Values: age},
		{Name: "Plan", Values: plan},
		{Name: "Churn", Values: churn},
	})
	require.NoError(t, err)

	roles := tabular.SplitRoles(f, "Churn")
	p := pipeline.NewPipeline(pipeline.TaskClassification, "Churn", roles)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	require.NoError(t, p.Fit(f, idx, pipeline.FitOptions{Trees: 5}))
	return p, f
}

func TestModelStoreSaveLoad(t *testing.T) {
	store, err := NewGobModelStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	p, f := fittedPipeline(t)
	id := core.ModelID("upload_abc_Churn")
	require.NoError(t, store.Save(ctx, id, p))

	ok, err := store.Exists(ctx, id)
	require.NoError(t, err)
	assert.True(t, ok)

	loaded, err := store.Load(ctx, id)
	require.NoError(t, err)

	want, err := p.Scores(f)
	require.NoError(t, err)
	got, err := loaded.Scores(f)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestModelStoreOverwriteIsLastWriterWins(t *testing.T) {
	store, err := NewGobModelStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	p, _ := fittedPipeline(t)
	id := core.ModelID("m")
	require.NoError(t, store.Save(ctx, id, p))
	require.NoError(t, store.Save(ctx, id, p))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []core.ModelID{"m"}, ids)
}

func TestModelStoreLoadMissing(t *testing.T) {
	store, err := NewGobModelStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, core.ErrModelNotFound)
	assert.True(t, core.IsNotFoundError(err))
}
