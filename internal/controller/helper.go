package controller

import (
	"encoding/json"
	"net"
	"net/http"
)

const hostTokenHeader = "X-Host-Token"

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}

	return host
}

func marshalOutput(output any) ([]byte, error) {
	return json.Marshal(output)
}
