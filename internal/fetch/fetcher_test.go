package fetch_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	dserrors "github.com/systmms/ssmconfig/internal/errors"
	"github.com/systmms/ssmconfig/internal/fetch"
	"github.com/systmms/ssmconfig/internal/logging"
	"github.com/systmms/ssmconfig/internal/metrics"
	"github.com/systmms/ssmconfig/tests/fakes"
)

func mustOptions(t *testing.T, path string, settings ...fetch.Setting) fetch.Options {
	t.Helper()
	o, err := fetch.NewOptions(path, settings...)
	require.NoError(t, err)
	return o
}

func TestFetch_SinglePageNoTransform(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", nil, map[string]string{"/local/test/example": "value"})

	got, err := fetch.Fetch(context.Background(), fake, mustOptions(t, "/local"))
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"/local/test/example": "value"}, got)
	assert.Equal(t, 1, fake.CallCount())
}

func TestFetch_PathParse(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", nil, map[string]string{"/local/test/example": "value"})

	o := mustOptions(t, "/local", fetch.Recursive(true), fetch.Decrypt(false), fetch.ParsePath(true))
	got, err := fetch.Fetch(context.Background(), fake, o)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"test/example": "value"}, got)
}

func TestFetch_PathNormalizationIsEquivalent(t *testing.T) {
	t.Parallel()

	for _, path := range []string{"/local", "/local/"} {
		t.Run(path, func(t *testing.T) {
			fake := fakes.NewFakeSSMClient()
			fake.AddPage("", nil, map[string]string{
				"/local/test/example": "value",
				"/local/other":        "x",
			})

			o := mustOptions(t, path, fetch.ParsePath(true))
			assert.Equal(t, "/local/", o.Path())

			got, err := fetch.Fetch(context.Background(), fake, o)
			require.NoError(t, err)
			assert.Equal(t, map[string]string{"test/example": "value", "other": "x"}, got)
			assert.Equal(t, "/local/", aws.ToString(fake.Calls()[0].Path))
		})
	}
}

func TestFetch_MultiPage(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", aws.String("test"), map[string]string{"/local/p1": "value"})
	fake.AddPage("test", nil, map[string]string{"/local/p2": "value"})

	o := mustOptions(t, "/local", fetch.Recursive(true), fetch.Decrypt(false))
	got, err := fetch.Fetch(context.Background(), fake, o)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"/local/p1": "value", "/local/p2": "value"}, got)

	calls := fake.Calls()
	require.Len(t, calls, 2)
	assert.Nil(t, calls[0].NextToken)
	assert.Equal(t, "test", aws.ToString(calls[1].NextToken))
}

func TestFetch_BlankTokenStops(t *testing.T) {
	t.Parallel()

	for _, token := range []string{"", " ", "\t\n"} {
		t.Run(fmt.Sprintf("%q", token), func(t *testing.T) {
			fake := fakes.NewFakeSSMClient()
			fake.AddPage("", aws.String(token), map[string]string{"/app/a": "1"})

			got, err := fetch.Fetch(context.Background(), fake, mustOptions(t, "/app"))
			require.NoError(t, err)

			assert.Equal(t, map[string]string{"/app/a": "1"}, got)
			assert.Equal(t, 1, fake.CallCount())
		})
	}
}

func TestFetch_FailurePropagates(t *testing.T) {
	t.Parallel()

	cause := errors.New("AccessDeniedException: not allowed")

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", aws.String("page-2"), map[string]string{"/local/p1": "value"})
	fake.AddError("page-2", cause)

	got, err := fetch.Fetch(context.Background(), fake, mustOptions(t, "/local"))
	require.Error(t, err)
	assert.Nil(t, got)
	assert.ErrorIs(t, err, cause)

	var remote *dserrors.RemoteCallError
	require.ErrorAs(t, err, &remote)
	assert.Equal(t, 2, remote.Page)
	assert.Equal(t, "/local/", remote.Path)
	assert.Equal(t, 2, fake.CallCount())
}

func TestFetch_FirstCallFailure(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddError("", errors.New("ThrottlingException"))

	_, err := fetch.Fetch(context.Background(), fake, mustOptions(t, "/local"))
	require.Error(t, err)
	assert.Equal(t, 1, fake.CallCount())
}

func TestFetch_IdentityMapperKeepsUnion(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", aws.String("2"), map[string]string{"/a/x": "1", "/a/y": "2"})
	fake.AddPage("2", nil, map[string]string{"/a/z": "3"})

	want := map[string]string{"/a/x": "1", "/a/y": "2", "/a/z": "3"}

	f := fetch.New(fake, fetch.RequestBuilderFor(mustOptions(t, "/a")), fetch.WithKeyMapper(fetch.Identity()))
	got, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Default mapper is identity too.
	got, err = fetch.New(fake, fetch.RequestBuilderFor(mustOptions(t, "/a"))).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestFetch_LastWriteWins(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", aws.String("2"), map[string]string{"/a/x": "old"})
	fake.AddPage("2", nil, map[string]string{"/a/x": "new"})

	got, err := fetch.Fetch(context.Background(), fake, mustOptions(t, "/a"))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"/a/x": "new"}, got)
}

func TestFetch_CustomMapper(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", nil, map[string]string{"/App/Key": "v"})

	lower := fetch.KeyMapperFunc(func(in map[string]string) map[string]string {
		out := make(map[string]string, len(in))
		for k, v := range in {
			out[strings.ToLower(k)] = v
		}
		return out
	})

	o := mustOptions(t, "/App", fetch.ParsePath(true))
	f := fetch.ForOptions(fake, o, fetch.WithKeyMapper(fetch.Chain(fetch.MapperFor(o), lower)))
	got, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"key": "v"}, got)
}

func TestFetch_ServedPaging(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.PageSize = 2
	for i := 0; i < 5; i++ {
		fake.AddStringParameter(fmt.Sprintf("/svc/key%d", i), fmt.Sprintf("v%d", i))
	}
	fake.AddStringParameter("/svc/nested/deep", "d")
	fake.AddStringParameter("/other/key", "no")

	got, err := fetch.Fetch(context.Background(), fake, mustOptions(t, "/svc", fetch.ParsePath(true)))
	require.NoError(t, err)

	assert.Len(t, got, 6)
	assert.Equal(t, "d", got["nested/deep"])
	assert.NotContains(t, got, "key")
	assert.Equal(t, 3, fake.CallCount())

	fake2 := fakes.NewFakeSSMClient()
	fake2.AddStringParameter("/svc/top", "t")
	fake2.AddStringParameter("/svc/nested/deep", "d")
	got, err = fetch.Fetch(context.Background(), fake2, mustOptions(t, "/svc", fetch.Recursive(false)))
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"/svc/top": "t"}, got)
}

func TestFetch_DecryptFlagReachesRequest(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddSecureStringParameter("/svc/password", "hunter2")

	got, err := fetch.Fetch(context.Background(), fake, mustOptions(t, "/svc"))
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got["/svc/password"])

	got, err = fetch.Fetch(context.Background(), fake, mustOptions(t, "/svc", fetch.Decrypt(false)))
	require.NoError(t, err)
	assert.NotEqual(t, "hunter2", got["/svc/password"])
}

func TestFetch_NilOutputIsFinalPage(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.GetParametersByPathFunc = func(ctx context.Context, params *ssm.GetParametersByPathInput) (*ssm.GetParametersByPathOutput, error) {
		return nil, nil
	}

	got, err := fetch.Fetch(context.Background(), fake, mustOptions(t, "/svc"))
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NotNil(t, got)
}

func TestFetch_NilRequest(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	f := fetch.New(fake, func(*string) *ssm.GetParametersByPathInput { return nil })

	_, err := f.Fetch(context.Background())
	assert.ErrorIs(t, err, fetch.ErrNilRequest)
	assert.Zero(t, fake.CallCount())
}

func TestFetch_RecordsMetricsAndLogs(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, true, true)

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", aws.String("t"), map[string]string{"/m/a": "secret-a", "/m/b": "secret-b"})
	fake.AddPage("t", nil, map[string]string{"/m/c": "secret-c"})

	f := fetch.ForOptions(fake, mustOptions(t, "/m"), fetch.WithMetrics(m), fetch.WithLogger(logger))
	_, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Calls.WithLabelValues("/m/")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.Pages.WithLabelValues("/m/")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Parameters.WithLabelValues("/m/")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.Failures.WithLabelValues("/m/")))

	assert.Contains(t, buf.String(), "Fetched page 2 of /m/")
	assert.NotContains(t, buf.String(), "secret-")
}

func TestFetch_DebugLogsNamesWithRedactedValues(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", nil, map[string]string{"/app/db/password": "hunter2-value"})

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, true, true)

	_, err := fetch.ForOptions(fake, mustOptions(t, "/app"), fetch.WithLogger(logger)).Fetch(context.Background())
	require.NoError(t, err)

	assert.Contains(t, buf.String(), "/app/db/password = [REDACTED]")
	assert.NotContains(t, buf.String(), "hunter2-value")
}

func TestFetch_NoParameterLinesWithoutDebug(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", nil, map[string]string{"/app/db/password": "hunter2-value"})

	var buf bytes.Buffer
	logger := logging.NewWithWriter(&buf, false, true)

	_, err := fetch.ForOptions(fake, mustOptions(t, "/app"), fetch.WithLogger(logger)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, buf.String())
}

func TestFetch_NilMapperFallsBackToIdentity(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()
	fake.AddPage("", nil, map[string]string{"/app/a": "1"})

	o := mustOptions(t, "/app")
	got, err := fetch.New(fake, fetch.RequestBuilderFor(o), fetch.WithKeyMapper(nil)).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"/app/a": "1"}, got)
}

func TestFetch_NilBuilder(t *testing.T) {
	t.Parallel()

	fake := fakes.NewFakeSSMClient()

	got, err := fetch.New(fake, nil).Fetch(context.Background())
	assert.ErrorIs(t, err, fetch.ErrNilBuilder)
	assert.Nil(t, got)
	assert.Zero(t, fake.CallCount())
}
