package api

import (
	"context"
	"net/http"
	"sort"

	"github.com/danielgtaylor/huma/v2"
	"github.com/smazurov/onair/internal/air"
	"github.com/smazurov/onair/internal/api/models"
)

func (s *Server) registerAirRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-status",
		Method:      http.MethodGet,
		Path:        "/api/status",
		Summary:     "Status",
		Description: "Current air state, observed cameras and broker connection",
		Tags:        []string{"air"},
		Security:    []map[string][]string{},
	}, func(_ context.Context, _ *struct{}) (*models.StatusResponse, error) {
		return &models.StatusResponse{Body: s.status()}, nil
	})

	huma.Register(s.api, huma.Operation{
		OperationID: "set-air",
		Method:      http.MethodPut,
		Path:        "/api/air",
		Summary:     "Set air state",
		Description: "Manually turn the on-air signal on or off. The next camera edge overrides it.",
		Tags:        []string{"air"},
		Security:    withAuth(),
		Errors:      []int{401},
	}, func(ctx context.Context, input *models.AirRequest) (*models.AirResponse, error) {
		// The publish outlives the request so a dropped client cannot
		// interrupt a transition halfway.
		changed := s.options.Air.Set(context.WithoutCancel(ctx), input.Body.OnAir)
		snap := s.options.Air.Snapshot()
		return &models.AirResponse{
			Body: models.AirData{
				OnAir:   snap.OnAir,
				State:   snap.State.String(),
				Changed: changed,
			},
		}, nil
	})
}

func (s *Server) status() models.StatusData {
	snap := s.options.Air.Snapshot()
	data := models.StatusData{
		OnAir:            snap.OnAir,
		State:            snap.State.String(),
		Indicator:        indicatorFor(snap.State),
		Source:           snap.Source,
		Since:            snap.Since,
		Transitions:      snap.Transitions,
		LastPublishError: snap.LastPublishErr,
		Cameras:          []models.CameraData{},
		Rule:             s.options.Rule,
	}

	if s.options.Indicator != nil {
		data.Indicator = s.options.Indicator.Indicator()
	}
	if s.options.Cameras != nil {
		for id, active := range s.options.Cameras.Snapshot() {
			data.Cameras = append(data.Cameras, models.CameraData{DeviceID: id, Active: active})
		}
		sort.Slice(data.Cameras, func(i, j int) bool {
			return data.Cameras[i].DeviceID < data.Cameras[j].DeviceID
		})
	}
	if s.options.Broker != nil {
		st := s.options.Broker.Status()
		data.Broker = models.BrokerData{
			Connected: st.Connected,
			Reason:    st.Reason,
			Host:      st.Host,
			User:      st.User,
			UpdatedAt: st.UpdatedAt,
		}
	}
	if s.options.Lines != nil {
		data.Lines = s.options.Lines()
	}
	return data
}

// indicatorFor is the glyph shown when no blinker is wired.
func indicatorFor(state air.State) string {
	if state == air.OnAir {
		return "🟢"
	}
	return "⚪"
}
