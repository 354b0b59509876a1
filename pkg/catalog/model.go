package catalog

import (
	"fmt"
	"strings"

	"github.com/MarkoPoloResearchLab/trainshed/pkg/values"
)

// Manufacturer is a reference entity unique by name (e.g. "ACME").
type Manufacturer struct {
	ID   string
	Name string
}

// Railway is the operating railway company a unit carries the livery
// of (e.g. "FS", "DB"). Unique by name.
type Railway struct {
	ID           string
	Name         string
	Abbreviation string
	Country      string
}

// RailwayModel is a catalog definition owned by a manufacturer. It
// owns one or more rolling stocks; their lifetime is bound to the
// model's.
type RailwayModel struct {
	ID             string
	ManufacturerID string
	ProductCode    ProductCode
	Description    string
	Scale          Scale
	PowerMethod    PowerMethod
	Epoch          Epoch
	Category       Category
	DeliveryDate   values.DeliveryDate
	Availability   AvailabilityStatus
	RollingStocks  []RollingStock
}

// RollingStock is a single catalog component of a railway model.
type RollingStock struct {
	ID             string
	RailwayModelID string
	Category       Category
	RailwayID      string
	RoadNumber     string
	TypeName       string
	Series         string
	Depot          string
	Length         values.Measure
	Livery         string
	ServiceLevel   ServiceLevel
	Control        Control
	DCCInterface   DCCInterface
}

// DCCCapable reports whether the unit carries an installed decoder.
func (rollingStock RollingStock) DCCCapable() bool {
	return rollingStock.Control.HasDecoder()
}

// RollingStockInput describes a rolling stock to create under a model.
type RollingStockInput struct {
	Category     Category
	RailwayID    string
	RoadNumber   string
	TypeName     string
	Series       string
	Depot        string
	Length       values.Measure
	Livery       string
	ServiceLevel ServiceLevel
	Control      Control
	DCCInterface DCCInterface
}

// Validate checks the required rolling stock fields.
func (input RollingStockInput) Validate() error {
	if input.Category == "" {
		return fmt.Errorf("%w: rolling stock category is required", ErrValidation)
	}
	if _, known := categories[input.Category]; !known {
		return fmt.Errorf("%w: category %q", ErrValidation, input.Category)
	}
	if input.Control != "" {
		if _, known := controls[input.Control]; !known {
			return fmt.Errorf("%w: control %q", ErrValidation, input.Control)
		}
	}
	if input.DCCInterface != "" {
		if _, known := dccInterfaces[input.DCCInterface]; !known {
			return fmt.Errorf("%w: dcc interface %q", ErrValidation, input.DCCInterface)
		}
	}
	if input.ServiceLevel != "" {
		if _, known := serviceLevels[input.ServiceLevel]; !known {
			return fmt.Errorf("%w: service level %q", ErrValidation, input.ServiceLevel)
		}
	}
	return nil
}

// RailwayModelInput describes a composite railway model create: the
// model row plus at least one rolling stock, written atomically.
type RailwayModelInput struct {
	ManufacturerID string
	ProductCode    ProductCode
	Description    string
	Scale          Scale
	PowerMethod    PowerMethod
	Epoch          Epoch
	Category       Category
	DeliveryDate   values.DeliveryDate
	Availability   AvailabilityStatus
	RollingStocks  []RollingStockInput
}

// Validate checks the required model fields and the owned stocks.
func (input RailwayModelInput) Validate() error {
	if strings.TrimSpace(input.ManufacturerID) == "" {
		return fmt.Errorf("%w: manufacturer id is required", ErrValidation)
	}
	if input.ProductCode.String() == "" {
		return fmt.Errorf("%w: product code is required", ErrValidation)
	}
	if strings.TrimSpace(input.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if _, known := scaleRatios[input.Scale]; !known {
		return fmt.Errorf("%w: scale %q", ErrValidation, input.Scale)
	}
	if _, known := powerMethods[input.PowerMethod]; !known {
		return fmt.Errorf("%w: power method %q", ErrValidation, input.PowerMethod)
	}
	if _, known := categories[input.Category]; !known {
		return fmt.Errorf("%w: category %q", ErrValidation, input.Category)
	}
	if input.Availability != "" {
		if _, known := availabilityStatuses[input.Availability]; !known {
			return fmt.Errorf("%w: availability status %q", ErrValidation, input.Availability)
		}
	}
	if len(input.RollingStocks) == 0 {
		return ErrNoRollingStock
	}
	for _, stockInput := range input.RollingStocks {
		if err := stockInput.Validate(); err != nil {
			return err
		}
	}
	return nil
}

// RailwayModelUpdate carries the mutable fields of a railway model.
// Identity and the owning manufacturer reference never change after
// creation.
type RailwayModelUpdate struct {
	ProductCode  ProductCode
	Description  string
	Scale        Scale
	PowerMethod  PowerMethod
	Epoch        Epoch
	Category     Category
	DeliveryDate values.DeliveryDate
	Availability AvailabilityStatus
}

// Validate checks the mutable model fields.
func (update RailwayModelUpdate) Validate() error {
	if update.ProductCode.String() == "" {
		return fmt.Errorf("%w: product code is required", ErrValidation)
	}
	if strings.TrimSpace(update.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	if _, known := scaleRatios[update.Scale]; !known {
		return fmt.Errorf("%w: scale %q", ErrValidation, update.Scale)
	}
	if _, known := powerMethods[update.PowerMethod]; !known {
		return fmt.Errorf("%w: power method %q", ErrValidation, update.PowerMethod)
	}
	if _, known := categories[update.Category]; !known {
		return fmt.Errorf("%w: category %q", ErrValidation, update.Category)
	}
	if update.Availability != "" {
		if _, known := availabilityStatuses[update.Availability]; !known {
			return fmt.Errorf("%w: availability status %q", ErrValidation, update.Availability)
		}
	}
	return nil
}
