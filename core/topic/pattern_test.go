package topic

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildMatchRoundTrip(t *testing.T) {
	for _, s := range Structures() {
		if s == StructureCustom {
			continue
		}
		t.Run(s.String(), func(t *testing.T) {
			p, err := Build("ovms", s, "", "alice")
			require.NoError(t, err)

			topic := p.SubscriptionFilterFor("myCar")
			// Turn the filter into a concrete topic.
			topic = topic[:len(topic)-1] + "metric/v/bat/soc"
			m, ok := p.Match(topic)
			require.True(t, ok, "topic %s should match", topic)
			assert.Equal(t, "myCar", m.VehicleID)
			assert.Equal(t, "metric/v/bat/soc", m.Remainder)
		})
	}
}

func TestBuildCustomUsernameStructure(t *testing.T) {
	p, err := Build("ovms", StructureCustom, "{prefix}/{mqtt_username}/{vehicle_id}", "alice")
	require.NoError(t, err)

	m, ok := p.Match("ovms/alice/myCar/status")
	require.True(t, ok)
	assert.Equal(t, "myCar", m.VehicleID)
	assert.Equal(t, "status", m.Remainder)

	_, ok = p.Match("ovms/bob/myCar/status")
	assert.False(t, ok, "wrong username must not match")
}

func TestBuildCustomUnsetUsernameMatchesAny(t *testing.T) {
	p, err := Build("ovms", StructureCustom, "{prefix}/{mqtt_username}/{vehicle_id}", "")
	require.NoError(t, err)
	assert.Equal(t, "ovms/+/+/#", p.SubscriptionFilter())

	m, ok := p.Match("ovms/whoever/myCar/metric/v/p/latitude")
	require.True(t, ok)
	assert.Equal(t, "myCar", m.VehicleID)
}

func TestBuildMissingPlaceholders(t *testing.T) {
	cases := []struct {
		template string
		missing  string
	}{
		{"{vehicle_id}/data", "prefix"},
		{"{prefix}/data", "vehicle_id"},
		{"", "prefix"},
	}
	for _, c := range cases {
		_, err := Build("ovms", StructureCustom, c.template, "")
		var mpe *MissingPlaceholderError
		require.ErrorAs(t, err, &mpe, "template %q", c.template)
		assert.Equal(t, c.missing, mpe.Placeholder)
	}
}

func TestBuildInvalidPlaceholder(t *testing.T) {
	_, err := Build("ovms", StructureCustom, "{prefix}/{foo}/{vehicle_id}", "")
	var ipe *InvalidPlaceholderError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "{foo}", ipe.Token)
}

func TestBuildInvalidFormat(t *testing.T) {
	templates := []string{
		"/{prefix}/{vehicle_id}",
		"{prefix}/{vehicle_id}/",
		"{prefix}//{vehicle_id}",
		"{prefix}/{vehicle_id}/{vehicle_id}",
		"{prefix}/+/{vehicle_id}",
	}
	for _, tpl := range templates {
		_, err := Build("ovms", StructureCustom, tpl, "")
		var ife *InvalidFormatError
		assert.ErrorAs(t, err, &ife, "template %q", tpl)
	}
}

func TestBuildRejectsBadPrefix(t *testing.T) {
	for _, prefix := range []string{"", "ovms/+", "#", "/ovms", "ovms/"} {
		_, err := Build(prefix, StructurePrefixVehicle, "", "")
		var ife *InvalidFormatError
		assert.True(t, errors.As(err, &ife), "prefix %q", prefix)
	}
}

func TestSubscriptionFilters(t *testing.T) {
	p, err := Build("ovms", StructureUsernameVehicle, "", "alice")
	require.NoError(t, err)
	assert.Equal(t, "ovms/alice/+/#", p.SubscriptionFilter())
	assert.Equal(t, "ovms/alice/myCar/#", p.SubscriptionFilterFor("myCar"))

	prefix, err := p.StructurePrefix("myCar")
	require.NoError(t, err)
	assert.Equal(t, "ovms/alice/myCar", prefix)
}

func TestStructurePrefixRequiresUsername(t *testing.T) {
	p, err := Build("ovms", StructureUsernameVehicle, "", "")
	require.NoError(t, err)
	_, err = p.StructurePrefix("myCar")
	var ife *InvalidFormatError
	assert.ErrorAs(t, err, &ife)
}

func TestMatchRejectsSkeletonOnly(t *testing.T) {
	p, err := Build("ovms", StructurePrefixVehicle, "", "")
	require.NoError(t, err)
	_, ok := p.Match("ovms/myCar")
	assert.False(t, ok, "topic without remainder must not match")
	_, ok = p.Match("other/myCar/status")
	assert.False(t, ok)
}

func TestMetricPath(t *testing.T) {
	assert.Equal(t, []string{"metric", "v", "bat", "soc"}, MetricPath("metric/v/bat/soc"))
	assert.Equal(t, []string{"status"}, MetricPath("status"))
	assert.Equal(t, []string{"a", "b"}, MetricPath("a//b"))
}

func TestCommandResponseTopics(t *testing.T) {
	p, err := Build("ovms", StructureUsernameVehicle, "", "alice")
	require.NoError(t, err)

	cmd, err := p.CommandTopic("myCar", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "ovms/alice/myCar/client/rr/command/abc123", cmd)

	resp, err := p.ResponseTopic("myCar", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "ovms/alice/myCar/client/rr/response/abc123", resp)

	assert.Equal(t, "ovms/alice/myCar/client/rr/response/+", p.ResponseFilter("myCar"))

	status, err := p.StatusTopic("myCar")
	require.NoError(t, err)
	assert.Equal(t, "ovms/alice/myCar/status", status)
}

func TestIsCommandResponseAndEvent(t *testing.T) {
	assert.True(t, IsCommandResponse("client/rr/command/1"))
	assert.True(t, IsCommandResponse("client/rr/response/1"))
	assert.False(t, IsCommandResponse("metric/v/bat/soc"))
	assert.True(t, IsEvent("event"))
	assert.True(t, IsEvent("notify/event"))
	assert.False(t, IsEvent("metric/eventful"))
}

func TestParseStructure(t *testing.T) {
	for _, s := range Structures() {
		got, err := ParseStructure(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStructure("nope")
	assert.Error(t, err)
}

func TestValidVehicleID(t *testing.T) {
	assert.True(t, ValidVehicleID("myCar"))
	for _, id := range []string{"", "a/b", "a+", "#"} {
		assert.False(t, ValidVehicleID(id), "id %q", id)
	}
}
