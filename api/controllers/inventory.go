package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/angelmondragon/csemotors/api/responses"
	"github.com/angelmondragon/csemotors/api/validators"
	"github.com/angelmondragon/csemotors/api/views"
	"github.com/angelmondragon/csemotors/internal/inventory"
	"github.com/angelmondragon/csemotors/internal/reviews"
	"github.com/angelmondragon/csemotors/pkg/db/models"
	pkgerrors "github.com/angelmondragon/csemotors/pkg/errors"
	"github.com/angelmondragon/csemotors/pkg/logger"
	"github.com/shopspring/decimal"
)

// Inventory flash texts.
const (
	ClassificationAddedNotice = "The %s classification was successfully added."
	ClassificationAddFailed   = "Sorry, adding the classification failed."
	VehicleAddedNotice        = "The %s %s was successfully added."
	VehicleAddFailed          = "Sorry, the insert failed."
	VehicleUpdatedNotice      = "The %s %s was successfully updated."
	VehicleUpdateFailed       = "Sorry, the update failed."
	VehicleDeletedNotice      = "The deletion was successful."
	VehicleDeleteFailed       = "Sorry, the delete failed."
)

const (
	managementTitle        = "Vehicle Management"
	addClassificationTitle = "Add Classification"
	addVehicleTitle        = "Add Vehicle"
	managementTarget       = "/inv/"
)

type vehicleReviews interface {
	ForVehicle(ctx context.Context, invID int) (*reviews.VehicleReviews, error)
}

// InventoryByClassification renders the vehicle grid of one classification.
func InventoryByClassification(svc inventory.Service, view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "classificationId")
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		listing, err := svc.ListByClassification(r.Context(), id)
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		view.Render(w, r, http.StatusOK, views.PageClassification, views.Page{
			Title: listing.Classification.Name + " vehicles",
			Data:  listing,
		})
	}
}

// InventoryDetail renders one vehicle with its reviews.
func InventoryDetail(svc inventory.Service, reviewSvc vehicleReviews, view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id, err := validators.PathID(r, "invId")
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		vehicle, err := svc.Get(ctx, id)
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		summary, err := reviewSvc.ForVehicle(ctx, id)
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		view.Render(w, r, http.StatusOK, views.PageVehicleDetail, views.Page{
			Title: vehicle.Make + " " + vehicle.Model,
			Data:  views.VehicleDetail{Vehicle: vehicle, Reviews: summary},
		})
	}
}

// InventoryManagement renders the management links and the classification picker.
func InventoryManagement(svc inventory.Service, view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		renderManagement(w, r, svc, view, http.StatusOK)
	}
}

func renderManagement(w http.ResponseWriter, r *http.Request, svc inventory.Service, view pageRenderer, status int) {
	list, err := svc.ListClassifications(r.Context())
	if err != nil {
		view.RenderError(w, r, err)
		return
	}
	view.Render(w, r, status, views.PageInventoryManagement, views.Page{Title: managementTitle, Data: list})
}

func AddClassificationView(view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view.Render(w, r, http.StatusOK, views.PageAddClassification, views.Page{Title: addClassificationTitle})
	}
}

func AddClassificationInvalid(view pageRenderer) validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		view.Render(w, r, http.StatusBadRequest, views.PageAddClassification, views.FormPage(addClassificationTitle, result, nil))
	}
}

// AddClassification stores the classification and shows the management view with the
// navigation rebuilt from the stored classifications.
func AddClassification(svc inventory.Service, view pageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)

		c, err := svc.AddClassification(ctx, form.Value("classification_name"))
		if err != nil {
			page := views.FormPage(addClassificationTitle, form, nil)
			if pkgerrors.Is(err, pkgerrors.CodeConflict) {
				page.Errors = append(page.Errors, pkgerrors.PublicMessage(err))
				view.Render(w, r, http.StatusBadRequest, views.PageAddClassification, page)
				return
			}
			logFailure(ctx, logg, "inventory.classification_failed", err)
			flashError(ctx, ClassificationAddFailed)
			view.Render(w, r, http.StatusNotImplemented, views.PageAddClassification, page)
			return
		}

		notice(ctx, fmt.Sprintf(ClassificationAddedNotice, c.Name))
		renderManagement(w, r, svc, view, http.StatusCreated)
	}
}

// AddInventoryView renders the add-vehicle form with the classification select.
func AddInventoryView(svc inventory.Service, view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListClassifications(r.Context())
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		view.Render(w, r, http.StatusOK, views.PageAddInventory, views.Page{Title: addVehicleTitle, Data: list})
	}
}

func AddInventoryInvalid(svc inventory.Service, view pageRenderer) validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		renderVehicleForm(w, r, svc, view, http.StatusBadRequest, views.PageAddInventory,
			views.FormPage(addVehicleTitle, result, nil))
	}
}

// AddInventory stores a vehicle and shows the management view.
func AddInventory(svc inventory.Service, view pageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)

		v, err := svc.Add(ctx, vehicleInput(form))
		if err != nil {
			page := views.FormPage(addVehicleTitle, form, nil)
			if pkgerrors.Is(err, pkgerrors.CodeValidation) {
				page.Errors = append(page.Errors, pkgerrors.PublicMessage(err))
				renderVehicleForm(w, r, svc, view, http.StatusBadRequest, views.PageAddInventory, page)
				return
			}
			logFailure(ctx, logg, "inventory.add_failed", err)
			flashError(ctx, VehicleAddFailed)
			renderVehicleForm(w, r, svc, view, http.StatusNotImplemented, views.PageAddInventory, page)
			return
		}

		notice(ctx, fmt.Sprintf(VehicleAddedNotice, v.Make, v.Model))
		renderManagement(w, r, svc, view, http.StatusCreated)
	}
}

// EditInventoryView renders the edit form filled from the stored vehicle.
func EditInventoryView(svc inventory.Service, view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "invId")
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		v, err := svc.Get(r.Context(), id)
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		renderVehicleForm(w, r, svc, view, http.StatusOK, views.PageEditInventory, views.Page{
			Title:  editTitle(v.Make, v.Model),
			Values: vehicleValues(v),
		})
	}
}

func EditInventoryInvalid(svc inventory.Service, view pageRenderer) validators.InvalidFunc {
	return func(w http.ResponseWriter, r *http.Request, result *validators.Result) {
		title := editTitle(result.Value("inv_make"), result.Value("inv_model"))
		renderVehicleForm(w, r, svc, view, http.StatusBadRequest, views.PageEditInventory,
			views.FormPage(title, result, nil))
	}
}

// UpdateInventory saves an edited vehicle and returns to management.
func UpdateInventory(svc inventory.Service, view pageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		form := validators.FormFromContext(ctx)
		input := vehicleInput(form)

		v, err := svc.Update(ctx, form.Int("inv_id"), input)
		if err != nil {
			page := views.FormPage(editTitle(input.Make, input.Model), form, nil)
			switch {
			case pkgerrors.Is(err, pkgerrors.CodeNotFound):
				view.RenderError(w, r, err)
			case pkgerrors.Is(err, pkgerrors.CodeValidation):
				page.Errors = append(page.Errors, pkgerrors.PublicMessage(err))
				renderVehicleForm(w, r, svc, view, http.StatusBadRequest, views.PageEditInventory, page)
			default:
				logFailure(ctx, logg, "inventory.update_failed", err)
				flashError(ctx, VehicleUpdateFailed)
				renderVehicleForm(w, r, svc, view, http.StatusNotImplemented, views.PageEditInventory, page)
			}
			return
		}

		notice(ctx, fmt.Sprintf(VehicleUpdatedNotice, v.Make, v.Model))
		seeOther(w, r, managementTarget)
	}
}

// DeleteConfirmView renders the read-only delete confirmation.
func DeleteConfirmView(svc inventory.Service, view pageRenderer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "invId")
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		v, err := svc.Get(r.Context(), id)
		if err != nil {
			view.RenderError(w, r, err)
			return
		}
		view.Render(w, r, http.StatusOK, views.PageDeleteConfirm, views.Page{
			Title: fmt.Sprintf("Delete %s %s", v.Make, v.Model),
			Data:  v,
		})
	}
}

// DeleteInventory removes the vehicle named by the inv_id form field.
func DeleteInventory(svc inventory.Service, view pageRenderer, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if err := r.ParseForm(); err != nil {
			view.RenderError(w, r, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "The form could not be read."))
			return
		}
		id, err := strconv.Atoi(r.PostForm.Get("inv_id"))
		if err != nil || id <= 0 {
			view.RenderError(w, r, pkgerrors.New(pkgerrors.CodeNotFound, "vehicle not found"))
			return
		}

		if err := svc.Delete(ctx, id); err != nil {
			logFailure(ctx, logg, "inventory.delete_failed", err)
			flashError(ctx, VehicleDeleteFailed)
			seeOther(w, r, fmt.Sprintf("/inv/delete/%d", id))
			return
		}

		notice(ctx, VehicleDeletedNotice)
		seeOther(w, r, managementTarget)
	}
}

type vehicleJSON struct {
	ID               int             `json:"inv_id"`
	ClassificationID int             `json:"classification_id"`
	Make             string          `json:"inv_make"`
	Model            string          `json:"inv_model"`
	Year             int             `json:"inv_year"`
	Description      string          `json:"inv_description"`
	Image            string          `json:"inv_image"`
	Thumbnail        string          `json:"inv_thumbnail"`
	Price            decimal.Decimal `json:"inv_price"`
	Miles            int             `json:"inv_miles"`
	Color            string          `json:"inv_color"`
}

// InventoryJSON lists one classification's vehicles for the management picker.
func InventoryJSON(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.PathID(r, "classificationId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		listing, err := svc.ListByClassification(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		out := make([]vehicleJSON, 0, len(listing.Vehicles))
		for _, v := range listing.Vehicles {
			out = append(out, vehicleJSON{
				ID:               v.ID,
				ClassificationID: v.ClassificationID,
				Make:             v.Make,
				Model:            v.Model,
				Year:             v.Year,
				Description:      v.Description,
				Image:            v.Image,
				Thumbnail:        v.Thumbnail,
				Price:            v.Price,
				Miles:            v.Miles,
				Color:            v.Color,
			})
		}
		responses.WriteSuccess(w, out)
	}
}

// CauseError panics so the recoverer's error page can be exercised.
func CauseError() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		panic("intentional error from /inv/cause-error")
	}
}

func renderVehicleForm(w http.ResponseWriter, r *http.Request, svc inventory.Service, view pageRenderer, status int, name string, page views.Page) {
	list, err := svc.ListClassifications(r.Context())
	if err != nil {
		view.RenderError(w, r, err)
		return
	}
	page.Data = list
	view.Render(w, r, status, name, page)
}

func vehicleInput(form *validators.Result) inventory.VehicleInput {
	return inventory.VehicleInput{
		ClassificationID: form.Int("classification_id"),
		Make:             form.Value("inv_make"),
		Model:            form.Value("inv_model"),
		Year:             form.Int("inv_year"),
		Description:      form.Value("inv_description"),
		Image:            form.Value("inv_image"),
		Thumbnail:        form.Value("inv_thumbnail"),
		Price:            form.Decimal("inv_price"),
		Miles:            form.Int("inv_miles"),
		Color:            form.Value("inv_color"),
	}
}

func vehicleValues(v *models.Vehicle) map[string]string {
	return map[string]string{
		"inv_id":            strconv.Itoa(v.ID),
		"classification_id": strconv.Itoa(v.ClassificationID),
		"inv_make":          v.Make,
		"inv_model":         v.Model,
		"inv_year":          strconv.Itoa(v.Year),
		"inv_description":   v.Description,
		"inv_image":         v.Image,
		"inv_thumbnail":     v.Thumbnail,
		"inv_price":         v.Price.String(),
		"inv_miles":         strconv.Itoa(v.Miles),
		"inv_color":         v.Color,
	}
}

func editTitle(vehicleMake, vehicleModel string) string {
	return fmt.Sprintf("Edit %s %s", vehicleMake, vehicleModel)
}
