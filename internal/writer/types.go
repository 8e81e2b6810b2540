// internal/writer/types.go
package writer

// StatusPlan is where one store's status block lives.
type StatusPlan struct {
	Endpoint   string
	UnitID     uint8
	BaseSlot   uint16 // block index; register address is BaseSlot*SlotsPerDevice
	DeviceName string
}

// Plan is the fully-built write plan for one store.
type Plan struct {
	UnitID uint8
	Status *StatusPlan // nil disables the mirror
}

// endpointClient is the exact contract the writer uses.
// IMPORTANT: There must be NO other version of this interface anywhere.
type endpointClient interface {
	WriteRegisters(unitID uint8, addr uint16, regs []uint16) error
}
