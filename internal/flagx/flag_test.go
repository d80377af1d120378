package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	clientFlags = []string{"-a", "-i", "-s", "-d", "-f", "-l"}
	serverFlags = []string{"-a", "-k", "-d", "-s", "-t", "-u", "-p", "-b", "-g", "-e", "-l"}
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "client keeps its own flags and drops the config file",
			args:    []string{"-c", "genzes.json", "-a", "10.0.0.5:50051", "-s", "file", "-f", "/var/lib/genzes"},
			allowed: clientFlags,
			want:    []string{"-a", "10.0.0.5:50051", "-s", "file", "-f", "/var/lib/genzes"},
		},
		{
			name:    "empty address with equals disables the remote",
			args:    []string{"-a=", "-l", "debug"},
			allowed: clientFlags,
			want:    []string{"-a=", "-l", "debug"},
		},
		{
			name:    "server storage and secret flags",
			args:    []string{"-k", "postgres", "-d", "postgres://genzes@db/genzes", "-s", "topsecret", "-i", "5"},
			allowed: serverFlags,
			want:    []string{"-k", "postgres", "-d", "postgres://genzes@db/genzes", "-s", "topsecret"},
		},
		{
			name:    "server s3 flags in equals form",
			args:    []string{"-b=avatars", "-e=http://127.0.0.1:9000", "-f=/tmp/ignored"},
			allowed: serverFlags,
			want:    []string{"-b=avatars", "-e=http://127.0.0.1:9000"},
		},
		{
			name:    "interval flag is client only",
			args:    []string{"-i", "10", "-t", "60"},
			allowed: clientFlags,
			want:    []string{"-i", "10"},
		},
		{
			name:    "flag at the end without a value",
			args:    []string{"-d"},
			allowed: clientFlags,
			want:    []string{"-d"},
		},
		{
			name:    "next dash token is not taken as a value",
			args:    []string{"-l", "-a", "127.0.0.1:50051"},
			allowed: clientFlags,
			want:    []string{"-l", "-a", "127.0.0.1:50051"},
		},
		{
			name:    "repeated flag keeps order",
			args:    []string{"-l", "info", "-l", "error"},
			allowed: serverFlags,
			want:    []string{"-l", "info", "-l", "error"},
		},
		{
			name:    "positional arguments are dropped",
			args:    []string{"serve", "--verbose"},
			allowed: serverFlags,
			want:    []string{},
		},
		{
			name:    "no arguments",
			args:    nil,
			allowed: clientFlags,
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFile(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short form among client flags", []string{"genzes", "-a", "127.0.0.1:50051", "-c", "client.json"}, "client.json"},
		{"long form among server flags", []string{"genzes-server", "-config=/etc/genzes/server.json", "-k", "sqlite"}, "/etc/genzes/server.json"},
		{"absent", []string{"genzes", "-s", "memory"}, ""},
		{"last one wins", []string{"genzes", "-c", "a.json", "-config", "b.json"}, "b.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Args = tt.args
			assert.Equal(t, tt.want, ConfigFile())
		})
	}
}
