package service_test

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brimdata/thermo/api/client"
	"github.com/brimdata/thermo/service"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type testClient struct {
	*testing.T
	*client.Connection
}

func (c *testClient) get(path string, header http.Header) (*http.Response, string) {
	req, err := http.NewRequest(http.MethodGet, c.ClientHostURL()+path, nil)
	require.NoError(c, err)
	for k, v := range header {
		req.Header[k] = v
	}
	res, err := http.DefaultClient.Do(req)
	require.NoError(c, err)
	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	require.NoError(c, err)
	return res, string(body)
}

func newCore(t *testing.T) (*service.Core, *testClient) {
	return newCoreWithConfig(t, service.Config{})
}

func newCoreWithConfig(t *testing.T, conf service.Config) (*service.Core, *testClient) {
	if conf.Logger == nil {
		conf.Logger = zaptest.NewLogger(t, zaptest.Level(zap.WarnLevel))
	}
	if conf.Version == "" {
		conf.Version = "v0.0.0-test"
	}
	core, err := service.NewCore(context.Background(), conf)
	require.NoError(t, err)
	t.Cleanup(core.Shutdown)
	srv := httptest.NewServer(core)
	t.Cleanup(srv.Close)
	return core, &testClient{
		Connection: client.NewConnectionTo(srv.URL),
		T:          t,
	}
}

// promCounterValue returns the value of the counter name whose labels
// include the given name/value pairs.
func promCounterValue(g prometheus.Gatherer, name string, labels ...string) interface{} {
	metricFamilies, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range metricFamilies {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.GetMetric() {
			if hasLabels(m, labels...) {
				return m.GetCounter().GetValue()
			}
		}
	}
	return errors.New("metric not found")
}

func hasLabels(m *dto.Metric, labels ...string) bool {
	have := map[string]string{}
	for _, lp := range m.GetLabel() {
		have[lp.GetName()] = lp.GetValue()
	}
	for i := 0; i+1 < len(labels); i += 2 {
		if have[labels[i]] != labels[i+1] {
			return false
		}
	}
	return true
}

func statusCode(err error) int {
	var res *client.ErrorResponse
	if errors.As(err, &res) {
		return res.StatusCode
	}
	return 0
}
