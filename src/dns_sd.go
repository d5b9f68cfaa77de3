package piltc

/*------------------------------------------------------------------
 *
 * Purpose:   	Announce the TIMESYNC broadcast service using DNS-SD
 *
 * Description:
 *
 *     Receivers normally learn the broadcast port from their own
 *     configuration, but on a flat studio network it is nicer to
 *     discover the generator.  This registers _timesync._udp on the
 *     configured port.
 *
 *     This uses the pure-Go github.com/brutella/dnssd package for
 *     cross-platform mDNS/DNS-SD service announcement without requiring
 *     any system daemon or C library dependencies.
 */

import (
	"context"

	"github.com/brutella/dnssd"
	"github.com/charmbracelet/log"
)

const DNS_SD_SERVICE = "_timesync._udp"

func dns_sd_announce(cfg *Config, logger *log.Logger) {
	var name = cfg.DNSSD.Name
	if name == "" {
		name = "piltc"
	}

	var sdcfg = dnssd.Config{ //nolint:exhaustruct
		Name: name,
		Type: DNS_SD_SERVICE,
		Port: cfg.BroadcastPort,
	}

	var sv, svErr = dnssd.NewService(sdcfg)
	if svErr != nil {
		logger.Error("DNS-SD: failed to create service", "err", svErr)

		return
	}

	var rp, rpErr = dnssd.NewResponder()
	if rpErr != nil {
		logger.Error("DNS-SD: failed to create responder", "err", rpErr)

		return
	}

	var _, addErr = rp.Add(sv)
	if addErr != nil {
		logger.Error("DNS-SD: failed to add service", "err", addErr)

		return
	}

	logger.Info("DNS-SD: announcing timesync broadcast", "port", cfg.BroadcastPort, "name", name)

	go func() {
		var respondErr = rp.Respond(context.Background())
		if respondErr != nil {
			logger.Error("DNS-SD: responder error", "err", respondErr)
		}
	}()
}
