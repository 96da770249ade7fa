package hosts_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arthur-debert/isna/pkg/command"
	"github.com/arthur-debert/isna/pkg/config"
	"github.com/arthur-debert/isna/pkg/errors"
	"github.com/arthur-debert/isna/pkg/hosts"
	"github.com/arthur-debert/isna/pkg/testutil"
)

const avahiOutput = `+;eth0;IPv4;web1;SSH Remote Terminal;local
=;eth0;IPv4;web1;SSH Remote Terminal;local;web1.local;192.168.1.10;22;
=;eth0;IPv4;printer;Internet Printer;local;printer.local;192.168.1.20;631;"note=office"
=;eth0;IPv6;web1;SSH Remote Terminal;local;web1.local;fe80::1;22;
=;eth0;IPv4;nas;Samba;local;nas.lan;192.168.1.30;445;
`

func TestParse(t *testing.T) {
	got := hosts.Parse([]byte(avahiOutput), ".local")
	assert.Equal(t, []string{"printer.local", "web1.local"}, got)

	assert.Equal(t, []string{"nas.lan"}, hosts.Parse([]byte(avahiOutput), ".lan"))
	assert.Empty(t, hosts.Parse(nil, ".local"))
}

func TestDiscover(t *testing.T) {
	exec := &testutil.MockExecutor{ExecuteFunc: func(context.Context, command.Command) (*command.Result, error) {
		return &command.Result{Stdout: []byte(avahiOutput)}, nil
	}}
	cfg := config.Default().Discovery

	got, err := hosts.Discover(context.Background(), exec, cfg, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"printer.local", "web1.local"}, got)

	calls := exec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "avahi-browse", calls[0].Name)
	assert.Equal(t, []string{"-alrpt"}, calls[0].Args)
}

func TestDiscover_Failure(t *testing.T) {
	exec := &testutil.MockExecutor{ExecuteFunc: testutil.ExitWith(1, "Failed to create client object")}

	_, err := hosts.Discover(context.Background(), exec, config.Default().Discovery, ".local")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrDiscovery))
}
