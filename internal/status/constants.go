// internal/status/constants.go
package status

// Store Status Block layout constants.
// These values define the protocol and MUST NOT be configurable.

// ---- BLOCK GEOMETRY ----

// SlotsPerDevice is the fixed number of holding registers per store.
const SlotsPerDevice = 20

// ---- HEALTH ----

// SlotHealthCode holds the store health state.
const SlotHealthCode = 0

// SlotLastErrorCode holds the last error code.
const SlotLastErrorCode = 1

// SlotSecondsInError holds the duration (in seconds) the store has been in error.
const SlotSecondsInError = 2

// ---- STORE FIGURES ----

// SlotMessages holds the number of stored messages.
const SlotMessages = 3

// SlotFreePages holds the number of free pages.
const SlotFreePages = 4

// SlotMaxWritesHi and SlotMaxWritesLo hold the highest page write count,
// high word first.
const SlotMaxWritesHi = 5
const SlotMaxWritesLo = 6

// SlotWornPages holds the number of pages at or past rated endurance.
const SlotWornPages = 7

// SlotCorruptPages holds the number of pages with an impossible length.
const SlotCorruptPages = 8

// ---- RESERVED RANGE ----

// Slots 9–10 are reserved for future use.
const SlotReservedStart = 9
const SlotReservedEnd = 10

// ---- DEVICE NAME ----

// SlotDeviceNameStart is the first slot used for the device name.
const SlotDeviceNameStart = 11

// SlotDeviceNameSlots is the number of slots reserved for the device name.
const SlotDeviceNameSlots = 8

// SlotDeviceNameEnd is the last slot used for the device name (inclusive).
const SlotDeviceNameEnd = SlotDeviceNameStart + SlotDeviceNameSlots - 1

// Slot 19 is reserved.

// ---- LIMITS ----

// DeviceNameMaxChars is the maximum number of ASCII characters stored for device name.
const DeviceNameMaxChars = 16

// ---- HEALTH CODES ----

// HealthUnknown represents an unknown or boot state.
const HealthUnknown uint16 = 0

// HealthOK represents a healthy store.
const HealthOK uint16 = 1

// HealthError represents a store that could not be read.
const HealthError uint16 = 2

// HealthFull represents a readable store with no free page.
const HealthFull uint16 = 3

// HealthWorn represents a readable store with pages past rated endurance.
const HealthWorn uint16 = 4
