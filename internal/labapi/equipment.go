package labapi

import (
	"context"
	"encoding/json"
	"net/http"
)

// EquipmentAPI covers /equipment. Create and Update take multipart forms so
// an image can travel with the record.
type EquipmentAPI struct{ c caller }

func (e *EquipmentAPI) List(ctx context.Context, params Params) (json.RawMessage, error) {
	return e.c.get(ctx, "/equipment", params)
}

func (e *EquipmentAPI) Get(ctx context.Context, equipmentID int64) (json.RawMessage, error) {
	return e.c.get(ctx, "/equipment/"+id(equipmentID), nil)
}

func (e *EquipmentAPI) Create(ctx context.Context, f *Form) (json.RawMessage, error) {
	return e.c.form(ctx, http.MethodPost, "/equipment", f)
}

func (e *EquipmentAPI) Update(ctx context.Context, equipmentID int64, f *Form) (json.RawMessage, error) {
	return e.c.form(ctx, http.MethodPut, "/equipment/"+id(equipmentID), f)
}

func (e *EquipmentAPI) Delete(ctx context.Context, equipmentID int64) (json.RawMessage, error) {
	return e.c.delete(ctx, "/equipment/"+id(equipmentID))
}

func (e *EquipmentAPI) UploadImage(ctx context.Context, equipmentID int64, f *Form) (json.RawMessage, error) {
	return e.c.form(ctx, http.MethodPost, "/equipment/"+id(equipmentID)+"/upload-image", f)
}

func (e *EquipmentAPI) DeleteImage(ctx context.Context, equipmentID int64) (json.RawMessage, error) {
	return e.c.delete(ctx, "/equipment/"+id(equipmentID)+"/delete-image")
}

func (e *EquipmentAPI) Analytics(ctx context.Context, equipmentID int64, params Params) (json.RawMessage, error) {
	return e.c.get(ctx, "/equipment/"+id(equipmentID)+"/analytics", params)
}
