// Command etherdfs installs or removes an EtherDFS drive mapping against a
// server reachable over raw Ethernet:
// etherdfs SRVMAC rdrv-ldrv [rdrv2-ldrv2 ...] [/p=HH] [/n] [/q] [/u]
package main

import (
	"fmt"
	"os"

	"github.com/FreddyVRetro/EtherDFS-3-for-PicoMEM"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "etherdfs:", err)
		os.Exit(1)
	}
}

func run(argv []string) error {
	cfg, err := etherdfs.ParseArgs(argv)
	if err != nil {
		return err
	}

	log := etherdfs.NewLogger(cfg.Quiet)

	if cfg.Unload {
		// This build carries no persisted state between invocations:
		// there is no resident process to signal, so unload is a no-op
		// that only exists to keep the CLI grammar complete.
		log.Info("nothing to unload: this build keeps no state between runs")
		return nil
	}

	iface, err := etherdfs.ResolveInterface()
	if err != nil {
		return err
	}

	inbox := &etherdfs.Inbox{}
	driver, err := etherdfs.NewRawLinkDriver(iface, inbox)
	if err != nil {
		return fmt.Errorf("opening raw socket on %s: %w", iface.Name, err)
	}

	table := etherdfs.NewDriveTable()
	table.SetLocalMAC(iface.HardwareAddr)

	for _, m := range cfg.Mappings {
		if err := table.Map(m.Local, m.Remote); err != nil {
			return fmt.Errorf("mapping %s->%s: %w",
				string(rune('A'+m.Remote)), string(rune('A'+m.Local)), err)
		}
	}

	transport := etherdfs.NewTransport(driver, inbox, iface.HardwareAddr)
	transport.ChecksumEnabled = !cfg.NoChecksum

	if cfg.Auto {
		disc := etherdfs.NewDiscovery(transport, table)
		peer, err := disc.Run()
		if err != nil {
			_ = driver.Close()
			return fmt.Errorf("auto-discovery failed: %w", err)
		}
		log.WithField("peer", peer).Info("discovered server")
	} else {
		transport.PeerMAC = cfg.ServerMAC
		table.SetPeerMAC(cfg.ServerMAC)
	}

	// The Engine is the redirector-side dispatcher; wiring it to a real
	// interrupt hook is host-OS work this package deliberately leaves out
	// of scope, so it is only constructed here to prove the pieces fit
	// together end to end.
	_ = etherdfs.NewEngine(transport, table)

	log.WithFields(map[string]interface{}{
		"peer":     transport.PeerMAC,
		"mappings": len(cfg.Mappings),
		"iface":    iface.Name,
	}).Info("etherdfs ready")

	select {}
}
