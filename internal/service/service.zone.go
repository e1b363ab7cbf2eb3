package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/itsatony/w4b_v3/server/telemetry/internal/errors"
	"github.com/itsatony/w4b_v3/server/telemetry/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ReportOptions overrides reporting behaviour for a single call
type ReportOptions struct {
	// Policy defaults to the service's configured collision policy
	Policy models.CollisionPolicy
	// SkipCache forces a fresh query even when a cached report exists
	SkipCache bool
}

// AnalyzeZone reports the normalized last readings of a zone's active sensors
func (s *Service) AnalyzeZone(ctx context.Context, zoneID string) (*models.ZoneReport, error) {
	return s.AnalyzeZoneWith(ctx, zoneID, ReportOptions{})
}

func (s *Service) AnalyzeZoneWith(ctx context.Context, zoneID string, opts ReportOptions) (*models.ZoneReport, error) {
	if zoneID == "" {
		return nil, errors.NewValidationError("zone id is required", nil)
	}
	if opts.Policy == "" {
		opts.Policy = s.options.CollisionPolicy
	}
	// cached reports are always built with the configured policy
	useCache := s.reports != nil && !opts.SkipCache && opts.Policy == s.options.CollisionPolicy

	if useCache {
		report, hit, err := s.reports.Get(ctx, zoneID)
		if err != nil {
			nuts.L.Warnf("[ZoneAnalyzer] Report cache read failed for zone %s: %v", zoneID, err)
		} else if hit {
			return report, nil
		}
	}

	states, err := s.sensors.ListActiveByZone(ctx, zoneID)
	if err != nil {
		nuts.L.Errorf("[ZoneAnalyzer] Error analyzing zone data for %s: %v", zoneID, err)
		return nil, err
	}

	report, err := BuildZoneReport(zoneID, s.now(), states, opts.Policy)
	if err != nil {
		nuts.L.Errorf("[ZoneAnalyzer] Error analyzing zone data for %s: %v", zoneID, err)
		return nil, err
	}

	for _, c := range report.Collisions {
		nuts.L.Warnf("[ZoneAnalyzer] Zone %s has %d active %s sensors, reporting %s (%s)", zoneID, len(c.SensorIDs), c.Type, c.Chosen, c.Policy)
	}

	if useCache {
		if err := s.reports.Set(ctx, report); err != nil {
			nuts.L.Warnf("[ZoneAnalyzer] Report cache write failed for zone %s: %v", zoneID, err)
		}
	}
	return report, nil
}

// BuildZoneReport folds sensor states into a report. States are visited in
// sensor id order; states without a last reading are omitted and types
// without a metric view are listed as unsupported.
func BuildZoneReport(zoneID string, ts time.Time, states []models.ZoneSensorState, policy models.CollisionPolicy) (*models.ZoneReport, error) {
	ordered := make([]models.ZoneSensorState, len(states))
	copy(ordered, states)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].ID < ordered[j].ID })

	report := models.NewZoneReport(zoneID, ts)
	contributors := make(map[models.SensorType][]string)
	chosen := make(map[models.SensorType]string)

	for _, state := range ordered {
		if len(state.LastReading) == 0 {
			continue
		}

		if !state.Type.IsKnown() {
			report.Unsupported = append(report.Unsupported, models.UnsupportedSensor{SensorID: state.ID, Type: state.Type})
			continue
		}

		metric, err := models.ParseMetric(state.Type, state.LastReading)
		if err != nil {
			return nil, errors.NewValidationError(fmt.Sprintf("invalid last reading for sensor %s", state.ID), err).
				WithDetails(map[string]string{"sensor_id": state.ID, "type": string(state.Type)})
		}

		contributors[state.Type] = append(contributors[state.Type], state.ID)
		if _, exists := report.Metrics[state.Type]; exists && policy == models.FirstWins {
			continue
		}
		report.Metrics[state.Type] = metric
		chosen[state.Type] = state.ID
	}

	for _, t := range models.KnownSensorTypes() {
		ids := contributors[t]
		if len(ids) < 2 {
			continue
		}
		report.Collisions = append(report.Collisions, models.Collision{
			Type:      t,
			SensorIDs: ids,
			Chosen:    chosen[t],
			Policy:    policy,
		})
	}

	return report, nil
}
