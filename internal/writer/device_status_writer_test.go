// internal/writer/device_status_writer_test.go
package writer

import (
	"errors"
	"testing"

	"github.com/tamzrod/mstore/internal/status"
)

func newStatusWriter(t *testing.T, cli *fakeEndpointClient, baseSlot uint16) *deviceStatusWriter {
	t.Helper()

	plan := Plan{
		Status: &StatusPlan{
			Endpoint:   "status-endpoint",
			UnitID:     1,
			BaseSlot:   baseSlot,
			DeviceName: "ST-01",
		},
	}

	sw, enabled := NewDeviceStatusWriter(plan, cli)
	if !enabled {
		t.Fatalf("status writer should be enabled")
	}
	return sw
}

func TestDisabledWithoutStatusPlan(t *testing.T) {
	if _, enabled := NewDeviceStatusWriter(Plan{}, &fakeEndpointClient{}); enabled {
		t.Fatalf("status writer must be disabled without a plan")
	}
}

func TestDeviceNameWrittenOnFullAssertOnly(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newStatusWriter(t, cli, 0)

	// ---- first write: FULL ASSERT ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("initial full assert failed: %v", err)
	}

	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full block write (%d regs), got %d", status.SlotsPerDevice, len(cli.lastRegs))
	}

	expectedNameRegs := status.EncodeDeviceName("ST-01")
	for i := 0; i < status.SlotDeviceNameSlots; i++ {
		slot := status.SlotDeviceNameStart + i
		if cli.lastRegs[slot] != expectedNameRegs[i] {
			t.Fatalf("device name slot %d mismatch: got=%d want=%d", slot, cli.lastRegs[slot], expectedNameRegs[i])
		}
	}

	// ---- second write: INCREMENTAL ONLY ----
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError, LastErrorCode: 7}); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.lastRegs) == status.SlotsPerDevice {
		t.Fatalf("device name should not be rewritten on incremental update")
	}
	if cli.lastRegsAddr != status.SlotHealthCode || len(cli.lastRegs) != 2 {
		t.Fatalf("expected one run over slots 0-1, got addr=%d len=%d", cli.lastRegsAddr, len(cli.lastRegs))
	}
}

func TestStoreFiguresWrittenAsRuns(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newStatusWriter(t, cli, 2)

	base := status.Snapshot{Health: status.HealthOK, Messages: 1, FreePages: 1023}
	if err := sw.WriteStatus(base); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}
	cli.writes = nil

	next := base
	next.Messages = 2
	next.FreePages = 1022
	next.MaxWrites = 3 // low word only
	if err := sw.WriteStatus(next); err != nil {
		t.Fatalf("incremental write failed: %v", err)
	}

	if len(cli.writes) != 2 {
		t.Fatalf("expected 2 runs, got %+v", cli.writes)
	}

	blockBase := uint16(2 * status.SlotsPerDevice)
	if cli.writes[0].addr != blockBase+status.SlotMessages || cli.writes[0].qty != 2 {
		t.Fatalf("unexpected first run %+v", cli.writes[0])
	}
	if cli.writes[1].addr != blockBase+status.SlotMaxWritesLo || cli.writes[1].qty != 1 {
		t.Fatalf("unexpected second run %+v", cli.writes[1])
	}
}

func TestSecondsInErrorResetOnRecovery(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newStatusWriter(t, cli, 0)

	errSnap := status.Snapshot{Health: status.HealthError, LastErrorCode: 42, SecondsInError: 3}
	if err := sw.WriteStatus(errSnap); err != nil {
		t.Fatalf("error snapshot write failed: %v", err)
	}

	okSnap := status.Snapshot{Health: status.HealthOK}
	if err := sw.WriteStatus(okSnap); err != nil {
		t.Fatalf("recovery snapshot write failed: %v", err)
	}

	if cli.lastRegsAddr != status.SlotHealthCode {
		t.Fatalf("unexpected write addr: got=%d", cli.lastRegsAddr)
	}
	if len(cli.lastRegs) != 3 {
		t.Fatalf("expected 3 register write, got %d", len(cli.lastRegs))
	}
	if cli.lastRegs[status.SlotSecondsInError] != 0 {
		t.Fatalf("seconds_in_error not reset: got=%d want=0", cli.lastRegs[status.SlotSecondsInError])
	}
}

func TestFailureForcesFullReassert(t *testing.T) {
	cli := &fakeEndpointClient{}
	sw := newStatusWriter(t, cli, 0)

	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthOK}); err != nil {
		t.Fatalf("full assert failed: %v", err)
	}

	cli.fail = errors.New("broken pipe")
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err == nil {
		t.Fatalf("expected write error")
	}

	cli.fail = nil
	if err := sw.WriteStatus(status.Snapshot{Health: status.HealthError}); err != nil {
		t.Fatalf("re-assert failed: %v", err)
	}
	if len(cli.lastRegs) != status.SlotsPerDevice {
		t.Fatalf("expected full re-assert after failure, got %d regs", len(cli.lastRegs))
	}
}
