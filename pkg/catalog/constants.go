package catalog

const (
	operationCreateManufacturer = "create_manufacturer"
	operationDeleteManufacturer = "delete_manufacturer"
	operationCreateRailway      = "create_railway"
	operationDeleteRailway      = "delete_railway"
	operationCreateModel        = "create_railway_model"
	operationUpdateModel        = "update_railway_model"
	operationDeleteModel        = "delete_railway_model"
	operationAddRollingStock    = "add_rolling_stock"
	operationRemoveRollingStock = "remove_rolling_stock"

	subjectManufacturer = "manufacturer"
	subjectRailway      = "railway"
	subjectRailwayModel = "railway_model"
	subjectRollingStock = "rolling_stock"

	operationStatusOK    = "ok"
	operationStatusError = "error"
)
