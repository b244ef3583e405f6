/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"os"

	"github.com/hashicorp/mdns"
)

const serviceType = "_drawduel._tcp"

// advertise announces the server on the local network so a second device
// can find the game without typing an address. The returned func stops it.
func advertise(cfg *Config) (func(), error) {
	host, err := os.Hostname()
	if err != nil {
		return nil, err
	}

	info := []string{
		"drawduel v" + releaseVersion,
		"path=" + cfg.prefix + "/draw",
	}

	service, err := mdns.NewMDNSService(host, serviceType, "", "", cfg.port, nil, info)
	if err != nil {
		return nil, err
	}

	server, err := mdns.NewServer(&mdns.Config{Zone: service})
	if err != nil {
		return nil, err
	}

	return func() { _ = server.Shutdown() }, nil
}
