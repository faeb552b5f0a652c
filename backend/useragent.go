package backend

import (
	"fmt"
	"net/http"
	"runtime"
)

type userAgentTransport struct {
	agent string
	rt    http.RoundTripper
}

func (u *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := u.rt
	if rt == nil {
		rt = http.DefaultTransport
	}
	r2 := req.Clone(req.Context())
	r2.Header.Set("User-Agent", u.agent)
	return rt.RoundTrip(r2)
}

// UserAgent formats the User-Agent sent with every request
func UserAgent(version string) string {
	return fmt.Sprintf("dealchat/%s (%s; %s)", version, runtime.GOOS, runtime.GOARCH)
}
