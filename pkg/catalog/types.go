package catalog

import (
	"fmt"
	"strings"
)

// Scale enumerates the modelling scales the catalog accepts.
type Scale string

const (
	ScaleH0  Scale = "H0"
	ScaleH0m Scale = "H0m"
	ScaleH0e Scale = "H0e"
	ScaleN   Scale = "N"
	ScaleTT  Scale = "TT"
	ScaleZ   Scale = "Z"
	ScaleG   Scale = "G"
	Scale1   Scale = "1"
	Scale0   Scale = "0"
	Scale00  Scale = "00"
)

// scaleRatios maps each scale to the denominator of its 1:n ratio.
var scaleRatios = map[Scale]string{
	ScaleH0:  "87",
	ScaleH0m: "87",
	ScaleH0e: "87",
	ScaleN:   "160",
	ScaleTT:  "120",
	ScaleZ:   "220",
	ScaleG:   "22.5",
	Scale1:   "32",
	Scale0:   "43.5",
	Scale00:  "76.2",
}

// ParseScale validates a raw scale name.
func ParseScale(raw string) (Scale, error) {
	candidate := Scale(strings.TrimSpace(raw))
	if _, known := scaleRatios[candidate]; !known {
		return "", fmt.Errorf("%w: scale %q", ErrValidation, raw)
	}
	return candidate, nil
}

// Ratio returns the denominator of the 1:n scale ratio as text
// (e.g. "87" for H0, meaning 1:87).
func (scale Scale) Ratio() string {
	return scaleRatios[scale]
}

// String returns the scale name.
func (scale Scale) String() string {
	return string(scale)
}

// Category enumerates rolling-stock categories.
type Category string

const (
	CategoryLocomotive           Category = "LOCOMOTIVE"
	CategoryPassengerCar         Category = "PASSENGER_CAR"
	CategoryFreightCar           Category = "FREIGHT_CAR"
	CategoryTrainSet             Category = "TRAIN_SET"
	CategoryRailcar              Category = "RAILCAR"
	CategoryElectricMultipleUnit Category = "ELECTRIC_MULTIPLE_UNIT"
)

var categories = map[Category]struct{}{
	CategoryLocomotive:           {},
	CategoryPassengerCar:         {},
	CategoryFreightCar:           {},
	CategoryTrainSet:             {},
	CategoryRailcar:              {},
	CategoryElectricMultipleUnit: {},
}

// ParseCategory validates a raw category, case-insensitively.
func ParseCategory(raw string) (Category, error) {
	candidate := Category(strings.ToUpper(strings.TrimSpace(raw)))
	if _, known := categories[candidate]; !known {
		return "", fmt.Errorf("%w: category %q", ErrValidation, raw)
	}
	return candidate, nil
}

// String returns the canonical category name.
func (category Category) String() string {
	return string(category)
}

// PowerMethod enumerates how a model draws traction power.
type PowerMethod string

const (
	PowerMethodAC          PowerMethod = "AC"
	PowerMethodDC          PowerMethod = "DC"
	PowerMethodTrixExpress PowerMethod = "TRIX_EXPRESS"
	PowerMethodNone        PowerMethod = "NONE"
)

var powerMethods = map[PowerMethod]struct{}{
	PowerMethodAC:          {},
	PowerMethodDC:          {},
	PowerMethodTrixExpress: {},
	PowerMethodNone:        {},
}

// ParsePowerMethod validates a raw power method, case-insensitively.
func ParsePowerMethod(raw string) (PowerMethod, error) {
	candidate := PowerMethod(strings.ToUpper(strings.TrimSpace(raw)))
	if _, known := powerMethods[candidate]; !known {
		return "", fmt.Errorf("%w: power method %q", ErrValidation, raw)
	}
	return candidate, nil
}

// String returns the canonical power method name.
func (powerMethod PowerMethod) String() string {
	return string(powerMethod)
}

// Control describes the DCC fitting state of a unit.
type Control string

const (
	ControlDCCReady  Control = "DCC_READY"
	ControlDCCFitted Control = "DCC_FITTED"
	ControlDCCSound  Control = "DCC_SOUND"
	ControlNoDCC     Control = "NO_DCC"
)

var controls = map[Control]struct{}{
	ControlDCCReady:  {},
	ControlDCCFitted: {},
	ControlDCCSound:  {},
	ControlNoDCC:     {},
}

// ParseControl validates a raw control value, case-insensitively.
func ParseControl(raw string) (Control, error) {
	candidate := Control(strings.ToUpper(strings.TrimSpace(raw)))
	if _, known := controls[candidate]; !known {
		return "", fmt.Errorf("%w: control %q", ErrValidation, raw)
	}
	return candidate, nil
}

// HasDecoder reports whether a decoder is installed (fitted or sound).
func (control Control) HasDecoder() bool {
	return control == ControlDCCFitted || control == ControlDCCSound
}

// String returns the canonical control name.
func (control Control) String() string {
	return string(control)
}

// DCCInterface enumerates decoder socket standards.
type DCCInterface string

const (
	DCCInterfaceNEM651  DCCInterface = "NEM_651"
	DCCInterfaceNEM652  DCCInterface = "NEM_652"
	DCCInterfaceNEM654  DCCInterface = "NEM_654"
	DCCInterfacePlux8   DCCInterface = "PLUX_8"
	DCCInterfacePlux12  DCCInterface = "PLUX_12"
	DCCInterfacePlux16  DCCInterface = "PLUX_16"
	DCCInterfacePlux22  DCCInterface = "PLUX_22"
	DCCInterfaceNext18  DCCInterface = "NEXT_18"
	DCCInterfaceNext18S DCCInterface = "NEXT_18_S"
	DCCInterfaceMTC21   DCCInterface = "MTC_21"
)

var dccInterfaces = map[DCCInterface]struct{}{
	DCCInterfaceNEM651:  {},
	DCCInterfaceNEM652:  {},
	DCCInterfaceNEM654:  {},
	DCCInterfacePlux8:   {},
	DCCInterfacePlux12:  {},
	DCCInterfacePlux16:  {},
	DCCInterfacePlux22:  {},
	DCCInterfaceNext18:  {},
	DCCInterfaceNext18S: {},
	DCCInterfaceMTC21:   {},
}

// ParseDCCInterface validates a raw socket standard, case-insensitively.
func ParseDCCInterface(raw string) (DCCInterface, error) {
	candidate := DCCInterface(strings.ToUpper(strings.TrimSpace(raw)))
	if _, known := dccInterfaces[candidate]; !known {
		return "", fmt.Errorf("%w: dcc interface %q", ErrValidation, raw)
	}
	return candidate, nil
}

// String returns the canonical socket name.
func (dccInterface DCCInterface) String() string {
	return string(dccInterface)
}

// ServiceLevel enumerates passenger accommodation classes.
type ServiceLevel string

const (
	ServiceLevelFirst            ServiceLevel = "1"
	ServiceLevelSecond           ServiceLevel = "2"
	ServiceLevelThird            ServiceLevel = "3"
	ServiceLevelFirstSecond      ServiceLevel = "1/2"
	ServiceLevelSecondThird      ServiceLevel = "2/3"
	ServiceLevelFirstSecondThird ServiceLevel = "1/2/3"
)

var serviceLevels = map[ServiceLevel]struct{}{
	ServiceLevelFirst:            {},
	ServiceLevelSecond:           {},
	ServiceLevelThird:            {},
	ServiceLevelFirstSecond:      {},
	ServiceLevelSecondThird:      {},
	ServiceLevelFirstSecondThird: {},
}

// ParseServiceLevel validates a raw service level.
func ParseServiceLevel(raw string) (ServiceLevel, error) {
	candidate := ServiceLevel(strings.TrimSpace(raw))
	if _, known := serviceLevels[candidate]; !known {
		return "", fmt.Errorf("%w: service level %q", ErrValidation, raw)
	}
	return candidate, nil
}

// String returns the canonical service level.
func (serviceLevel ServiceLevel) String() string {
	return string(serviceLevel)
}

// AvailabilityStatus enumerates catalog availability states.
type AvailabilityStatus string

const (
	AvailabilityAnnounced    AvailabilityStatus = "ANNOUNCED"
	AvailabilityAvailable    AvailabilityStatus = "AVAILABLE"
	AvailabilityCancelled    AvailabilityStatus = "CANCELLED"
	AvailabilityDiscontinued AvailabilityStatus = "DISCONTINUED"
)

var availabilityStatuses = map[AvailabilityStatus]struct{}{
	AvailabilityAnnounced:    {},
	AvailabilityAvailable:    {},
	AvailabilityCancelled:    {},
	AvailabilityDiscontinued: {},
}

// ParseAvailabilityStatus validates a raw availability status.
func ParseAvailabilityStatus(raw string) (AvailabilityStatus, error) {
	candidate := AvailabilityStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if _, known := availabilityStatuses[candidate]; !known {
		return "", fmt.Errorf("%w: availability status %q", ErrValidation, raw)
	}
	return candidate, nil
}

// String returns the canonical status name.
func (availabilityStatus AvailabilityStatus) String() string {
	return string(availabilityStatus)
}

// ProductCode is a manufacturer catalog number. Codes are unique only
// within a manufacturer's catalog.
type ProductCode struct {
	value string
}

const maxProductCodeLength = 64

// NewProductCode validates and normalizes a product code.
func NewProductCode(raw string) (ProductCode, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return ProductCode{}, fmt.Errorf("%w: empty product code", ErrValidation)
	}
	if len(trimmed) > maxProductCodeLength {
		return ProductCode{}, fmt.Errorf("%w: product code longer than %d", ErrValidation, maxProductCodeLength)
	}
	return ProductCode{value: trimmed}, nil
}

// String returns the normalized code.
func (productCode ProductCode) String() string {
	return productCode.value
}
