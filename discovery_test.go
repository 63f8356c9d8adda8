package etherdfs

import "testing"

func TestDiscoveryRunAdoptsReplyingPeer(t *testing.T) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)
	tr.PeerMAC = nil // discovery is responsible for seeding this

	driver.reply = func(sent []byte) []byte {
		return buildReply(sent[offSeq], 0, []byte{0, 0, 0, 0, 0, 0}, true)
	}

	table := NewDriveTable()
	table.Map(0, 4)

	d := NewDiscovery(tr, table)
	mac, err := d.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !macEqual(mac, testPeerMAC) {
		t.Errorf("adopted MAC = %v, want %v", mac, testPeerMAC)
	}
	if !macEqual(table.PeerMAC(), testPeerMAC) {
		t.Errorf("table PeerMAC = %v, want %v", table.PeerMAC(), testPeerMAC)
	}

	if len(driver.sent) != 1 {
		t.Fatalf("sent %d frames, want 1", len(driver.sent))
	}
	sentDst := driver.sent[0][offDstMAC : offDstMAC+6]
	if !macEqual(sentDst, broadcastMAC) {
		t.Errorf("probe destination = %v, want broadcast", sentDst)
	}
}

func TestDiscoveryRunNoServerFound(t *testing.T) {
	driver := &fakeLinkDriver{} // never replies
	tr := newTestTransport(driver)
	tr.MaxAttempts = 1

	table := NewDriveTable()
	table.Map(0, 4)

	d := NewDiscovery(tr, table)
	if _, err := d.Run(); err != ErrNoServerFound {
		t.Fatalf("err = %v, want ErrNoServerFound", err)
	}
}

func TestDiscoveryRunNoMappedDrive(t *testing.T) {
	driver := &fakeLinkDriver{}
	tr := newTestTransport(driver)
	table := NewDriveTable()

	d := NewDiscovery(tr, table)
	if _, err := d.Run(); err == nil {
		t.Fatal("Run succeeded with no mapped drive")
	}
}
