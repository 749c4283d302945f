package rest

import (
	"context"
	"errors"
	"net/http"
	"time"

	"lintang/transitx/pkg/datastructure"
	"lintang/transitx/pkg/engine/filterchain"
	"lintang/transitx/pkg/engine/pathstate"
	"lintang/transitx/pkg/server/rest/service"
	"lintang/transitx/pkg/snapshot"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

type TransitService interface {
	FindTransfers(ctx context.Context, fromTripID string, fromPos int, toTripID string) ([]service.TransferView, error)
	ResolveTransfer(ctx context.Context, fromTripID string, fromPos int, toTripID string, toPos int) (service.TransferView, bool, error)
	ResolvePaths(ctx context.Context, paths [][]service.LegRef) ([]service.PathTransfers, error)
	OptimizePath(ctx context.Context, legs []service.LegLocator, serviceDay time.Time) (service.OptimizedPathView, error)
	FilterItineraries(ctx context.Context, its []*datastructure.Itinerary, p service.FilterParams) (filterchain.Result, error)
	JoinStates(ctx context.Context, transitState, streetState *pathstate.PathState) *pathstate.PathState
	SnapshotStats(ctx context.Context) snapshot.Stats
}

type TransitHandler struct {
	svc          TransitService
	promeMetrics *metrics
	validate     *validator.Validate
	trans        ut.Translator
}

func TransitRouter(r *chi.Mux, svc TransitService, m *metrics) {
	validate := validator.New()
	english := en.New()
	uni := ut.New(english, english)
	trans, _ := uni.GetTranslator("en")
	_ = enTranslations.RegisterDefaultTranslations(validate, trans)

	handler := &TransitHandler{svc: svc, promeMetrics: m, validate: validate, trans: trans}

	r.Group(func(r chi.Router) {
		r.Route("/api", func(r chi.Router) {
			r.Post("/transfers/find", handler.findTransfers)
			r.Post("/transfers/resolve", handler.resolveTransfer)
			r.Post("/paths/transfers", handler.resolvePaths)
			r.Post("/paths/optimize", handler.optimizePath)
			r.Post("/itineraries/filter", handler.filterItineraries)
			r.Post("/states/join", handler.joinStates)
			r.Get("/snapshot", handler.snapshotStats)
		})
	})
}

// validateRequest render error validasi sendiri, return false kalau request tidak valid.
func (h *TransitHandler) validateRequest(w http.ResponseWriter, r *http.Request, data interface{}) bool {
	if err := h.validate.Struct(data); err != nil {
		render.Render(w, r, ErrValidation(err, translateError(err, h.trans)))
		return false
	}
	return true
}

// FindTransfersRequest model info
//
//	@Description	request body untuk mencari transfer dari satu trip ke trip lain
type FindTransfersRequest struct {
	FromTrip         string `json:"from_trip" validate:"required"`
	FromStopPosition int    `json:"from_stop_position" validate:"gte=0"`
	ToTrip           string `json:"to_trip" validate:"required"`
}

func (s *FindTransfersRequest) Bind(r *http.Request) error {
	if s.FromTrip == "" || s.ToTrip == "" {
		return errors.New("invalid request")
	}
	return nil
}

type FindTransfersResponse struct {
	Transfers []service.TransferView `json:"transfers"`
}

// findTransfers
//
//	@Summary		semua transfer yang feasible dari satu trip ke trip lain.
//	@Tags			transfers
//	@Param			body	body	FindTransfersRequest	true	"request body"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/transfers/find [post]
//	@Success		200	{object}	FindTransfersResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		422	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TransitHandler) findTransfers(w http.ResponseWriter, r *http.Request) {
	data := &FindTransfersRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	edges, err := h.svc.FindTransfers(r.Context(), data.FromTrip, data.FromStopPosition, data.ToTrip)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.TransferLookupCount.WithLabelValues("find", boolLabel(len(edges) > 0)).Inc()

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &FindTransfersResponse{Transfers: edges})
}

// ResolveTransferRequest model info
//
//	@Description	request body untuk mencari constrained transfer yang berlaku di satu koneksi
type ResolveTransferRequest struct {
	FromTrip         string `json:"from_trip" validate:"required"`
	FromStopPosition int    `json:"from_stop_position" validate:"gte=0"`
	ToTrip           string `json:"to_trip" validate:"required"`
	ToStopPosition   int    `json:"to_stop_position" validate:"gte=0"`
}

func (s *ResolveTransferRequest) Bind(r *http.Request) error {
	if s.FromTrip == "" || s.ToTrip == "" {
		return errors.New("invalid request")
	}
	return nil
}

type ResolveTransferResponse struct {
	Found    bool                  `json:"found"`
	Transfer *service.TransferView `json:"transfer,omitempty"`
}

// resolveTransfer
//
//	@Summary		constrained transfer yang berlaku antara 2 posisi stop di 2 trip.
//	@Tags			transfers
//	@Param			body	body	ResolveTransferRequest	true	"request body"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/transfers/resolve [post]
//	@Success		200	{object}	ResolveTransferResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		422	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TransitHandler) resolveTransfer(w http.ResponseWriter, r *http.Request) {
	data := &ResolveTransferRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	edge, found, err := h.svc.ResolveTransfer(r.Context(), data.FromTrip, data.FromStopPosition, data.ToTrip, data.ToStopPosition)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}
	h.promeMetrics.TransferLookupCount.WithLabelValues("resolve", boolLabel(found)).Inc()

	resp := &ResolveTransferResponse{Found: found}
	if found {
		resp.Transfer = &edge
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, resp)
}

// LegRequest model info
//
//	@Description	satu ride di path: naik trip_id di board_pos, turun di alight_pos
type LegRequest struct {
	TripID    string `json:"trip_id" validate:"required"`
	BoardPos  int    `json:"board_pos" validate:"gte=0"`
	AlightPos int    `json:"alight_pos" validate:"gte=0,gtefield=BoardPos"`
}

type ResolvePathsRequest struct {
	Paths [][]LegRequest `json:"paths" validate:"required,min=1,dive,min=1,dive"`
}

func (s *ResolvePathsRequest) Bind(r *http.Request) error {
	if len(s.Paths) == 0 {
		return errors.New("invalid request")
	}
	return nil
}

type ResolvePathsResponse struct {
	Paths []service.PathTransfers `json:"paths"`
}

// resolvePaths
//
//	@Summary		transfer yang terealisasi untuk setiap path + priority cost nya.
//	@Tags			paths
//	@Param			body	body	ResolvePathsRequest	true	"request body"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/paths/transfers [post]
//	@Success		200	{object}	ResolvePathsResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		422	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TransitHandler) resolvePaths(w http.ResponseWriter, r *http.Request) {
	data := &ResolvePathsRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	refs := make([][]service.LegRef, len(data.Paths))
	for i, p := range data.Paths {
		for _, l := range p {
			refs[i] = append(refs[i], service.LegRef{TripID: l.TripID, BoardPos: l.BoardPos, AlightPos: l.AlightPos})
		}
	}
	res, err := h.svc.ResolvePaths(r.Context(), refs)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &ResolvePathsResponse{Paths: res})
}

// FilterItinerariesRequest model info
//
//	@Description	request body untuk filter itinerary. parameter kosong pakai default dari config
type FilterItinerariesRequest struct {
	Itineraries       []*datastructure.Itinerary `json:"itineraries" validate:"required,dive,required"`
	CostLimitFunction *string                    `json:"cost_limit_function,omitempty"`
	WaitFactor        *float64                   `json:"wait_factor,omitempty" validate:"omitempty,gte=0"`
	MaxItineraries    *int                       `json:"max_itineraries,omitempty" validate:"omitempty,gte=0"`
}

func (s *FilterItinerariesRequest) Bind(r *http.Request) error {
	if s.Itineraries == nil {
		return errors.New("invalid request")
	}
	return nil
}

type FilterItinerariesResponse struct {
	Itineraries []*datastructure.Itinerary `json:"itineraries"`
	Removed     map[string][]string        `json:"removed"`
}

// OptimizeLegRequest model info
//
//	@Description	satu ride di path: naik trip_id di board_stop, turun di alight_stop. waktu dalam detik sejak awal service day
type OptimizeLegRequest struct {
	TripID     string `json:"trip_id" validate:"required"`
	BoardStop  string `json:"board_stop" validate:"required"`
	BoardTime  int    `json:"board_time" validate:"gte=0"`
	AlightStop string `json:"alight_stop" validate:"required"`
	AlightTime int    `json:"alight_time" validate:"gtefield=BoardTime"`
}

type OptimizePathRequest struct {
	Legs       []OptimizeLegRequest `json:"legs" validate:"required,min=1,dive"`
	ServiceDay time.Time            `json:"service_day"`
}

func (s *OptimizePathRequest) Bind(r *http.Request) error {
	if len(s.Legs) == 0 {
		return errors.New("invalid request")
	}
	return nil
}

type OptimizePathResponse struct {
	Legs         []service.LegView      `json:"legs"`
	Transfers    []service.TransferView `json:"transfers"`
	PriorityCost int                    `json:"priority_cost"`
	Permutations int                    `json:"permutations"`
	TransitState *PathStateDTO          `json:"transit_state"`
}

// optimizePath
//
//	@Summary		pilih tempat transfer terbaik untuk path (semua kombinasi tempat transfer dicoba).
//	@Tags			paths
//	@Param			body	body	OptimizePathRequest	true	"request body"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/paths/optimize [post]
//	@Success		200	{object}	OptimizePathResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		404	{object}	ErrResponse
//	@Failure		422	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TransitHandler) optimizePath(w http.ResponseWriter, r *http.Request) {
	data := &OptimizePathRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	locs := make([]service.LegLocator, 0, len(data.Legs))
	for _, l := range data.Legs {
		locs = append(locs, service.LegLocator{
			TripID:     l.TripID,
			BoardStop:  l.BoardStop,
			BoardTime:  l.BoardTime,
			AlightStop: l.AlightStop,
			AlightTime: l.AlightTime,
		})
	}
	res, err := h.svc.OptimizePath(r.Context(), locs, data.ServiceDay)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	render.Status(r, http.StatusOK)
	render.JSON(w, r, &OptimizePathResponse{
		Legs:         res.Legs,
		Transfers:    res.Transfers,
		PriorityCost: res.PriorityCost,
		Permutations: res.Permutations,
		TransitState: newPathStateDTO(res.TransitState),
	})
}

// filterItineraries
//
//	@Summary		hapus itinerary yang generalized cost nya terlalu mahal dibanding itinerary lain.
//	@Tags			itineraries
//	@Param			body	body	FilterItinerariesRequest	true	"request body"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/itineraries/filter [post]
//	@Success		200	{object}	FilterItinerariesResponse
//	@Failure		400	{object}	ErrResponse
//	@Failure		500	{object}	ErrResponse
func (h *TransitHandler) filterItineraries(w http.ResponseWriter, r *http.Request) {
	data := &FilterItinerariesRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	params := service.FilterParams{WaitFactor: data.WaitFactor, MaxItineraries: data.MaxItineraries}
	if data.CostLimitFunction != nil {
		f, err := filterchain.ParseLinearFunction(*data.CostLimitFunction)
		if err != nil {
			render.Render(w, r, ErrChi(err))
			return
		}
		params.CostLimitFunction = &f
	}

	res, err := h.svc.FilterItineraries(r.Context(), data.Itineraries, params)
	if err != nil {
		render.Render(w, r, ErrChi(err))
		return
	}

	removed := make(map[string][]string, len(res.Removed))
	for name, its := range res.Removed {
		h.promeMetrics.FlaggedItineraries.WithLabelValues(name).Add(float64(len(its)))
		for _, it := range its {
			removed[name] = append(removed[name], it.ID)
		}
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, &FilterItinerariesResponse{Itineraries: res.Kept, Removed: removed})
}

// JoinStatesRequest model info
//
//	@Description	request body untuk menggabungkan state fase transit dan fase street
type JoinStatesRequest struct {
	TransitState *PathStateDTO `json:"transit_state" validate:"required"`
	StreetState  *PathStateDTO `json:"street_state" validate:"required"`
}

func (s *JoinStatesRequest) Bind(r *http.Request) error {
	if s.TransitState == nil || s.StreetState == nil {
		return errors.New("invalid request")
	}
	return nil
}

// joinStates
//
//	@Summary		gabungkan state hasil fase transit dengan state hasil fase street.
//	@Tags			states
//	@Param			body	body	JoinStatesRequest	true	"request body"
//	@Accept			application/json
//	@Produce		application/json
//	@Router			/api/states/join [post]
//	@Success		200	{object}	PathStateDTO
//	@Failure		400	{object}	ErrResponse
func (h *TransitHandler) joinStates(w http.ResponseWriter, r *http.Request) {
	data := &JoinStatesRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	if !h.validateRequest(w, r, data) {
		return
	}

	joined := h.svc.JoinStates(r.Context(), data.TransitState.toPathState(), data.StreetState.toPathState())

	render.Status(r, http.StatusOK)
	render.JSON(w, r, newPathStateDTO(joined))
}

// snapshotStats
//
//	@Summary		versi & ukuran snapshot network yang sedang dipakai.
//	@Tags			snapshot
//	@Produce		application/json
//	@Router			/api/snapshot [get]
//	@Success		200	{object}	snapshot.Stats
func (h *TransitHandler) snapshotStats(w http.ResponseWriter, r *http.Request) {
	render.Status(r, http.StatusOK)
	render.JSON(w, r, h.svc.SnapshotStats(r.Context()))
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
