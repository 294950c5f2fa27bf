package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type alertRule struct {
	Alert       string            `yaml:"alert"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for"`
	Labels      map[string]string `yaml:"labels"`
	Annotations map[string]string `yaml:"annotations"`
}

type alertFile struct {
	Groups []struct {
		Name  string      `yaml:"name"`
		Rules []alertRule `yaml:"rules"`
	} `yaml:"groups"`
}

// TestPeppolAlertRules keeps the shipped alert rules in line with the metric
// names registered by this package and jobmetrics.
func TestPeppolAlertRules(t *testing.T) {
	data, err := os.ReadFile(filepath.Join("..", "..", "deploy", "prometheus", "alerts", "peppol.yml"))
	require.NoError(t, err)

	var file alertFile
	require.NoError(t, yaml.Unmarshal(data, &file))
	require.Len(t, file.Groups, 1)
	require.Equal(t, "peppol", file.Groups[0].Name)

	expected := map[string]struct {
		severity string
		metric   string
	}{
		"PeppolActionFailures": {"critical", "peppolweb_peppol_actions_total"},
		"PeppolBackendSlow":    {"warning", "peppolweb_backend_call_duration_seconds_bucket"},
		"PeppolSyncJobFailing": {"warning", "peppolweb_jobs_failures_total"},
		"PeppolSyncStale":      {"warning", "peppolweb_job_last_success_timestamp_seconds"},
	}

	rules := file.Groups[0].Rules
	require.Len(t, rules, len(expected))
	for _, rule := range rules {
		t.Run(rule.Alert, func(t *testing.T) {
			want, ok := expected[rule.Alert]
			require.True(t, ok, "unexpected rule")
			assert.Equal(t, want.severity, rule.Labels["severity"])
			assert.Contains(t, rule.Expr, want.metric)
			assert.True(t, strings.HasPrefix(rule.Annotations["runbook"], "docs/runbook-peppol.md#"), rule.Annotations["runbook"])
			assert.NotEmpty(t, rule.Annotations["summary"])
			assert.NotEmpty(t, rule.Annotations["description"])
			_, err := time.ParseDuration(rule.For)
			assert.NoError(t, err, "for: %q", rule.For)
		})
	}
}
