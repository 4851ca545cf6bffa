package service

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnit(t *testing.T) {
	u := Unit("/usr/local/bin/solarwallbox", "/etc/solarwallbox.yaml")

	assert.Contains(t, u, "ExecStart=/usr/local/bin/solarwallbox serve --config /etc/solarwallbox.yaml\n")
	assert.Contains(t, u, "ExecReload=/bin/kill -HUP $MAINPID\n")
	assert.False(t, strings.Contains(u, "/path/to/"))
}
