package optim

import (
	"context"
	"time"

	"github.com/san-kum/linebot/internal/config"
	"github.com/san-kum/linebot/internal/follower"
	"github.com/san-kum/linebot/internal/telemetry"
	"github.com/san-kum/linebot/internal/track"
)

// lineLossPenalty dominates tracking error: losing the line is worse
// than any amount of wobble on it.
const lineLossPenalty = 1000

// TuneGains grid-searches Kp/Ki/Kd over simulated runs of the configured
// course. The score is tracking RMS plus a heavy penalty for time spent
// off the array.
func TuneGains(ctx context.Context, cfg *config.Config, kps, kis, kds []float64) (map[string]float64, float64, error) {
	search := NewGridSearch([]string{"kp", "ki", "kd"}, [][]float64{kps, kis, kds})

	return search.Search(ctx, func(params map[string]float64) (float64, error) {
		trial := *cfg
		trial.Gains.Kp = params["kp"]
		trial.Gains.Ki = params["ki"]
		trial.Gains.Kd = params["kd"]

		score, err := scoreRun(ctx, &trial)
		if err != nil {
			return 0, err
		}
		return score, nil
	})
}

func scoreRun(ctx context.Context, cfg *config.Config) (float64, error) {
	course, err := track.ByName(cfg.Course)
	if err != nil {
		return 0, err
	}

	geom := cfg.Geometry()
	sim := track.NewSimulator(geom, course, cfg.Seed)
	sim.Noise = cfg.Noise

	fol := follower.New(sim, sim, geom, track.IdealBounds(geom.Channels), cfg.FollowerParams())

	rms := telemetry.NewTrackingRMS()
	loss := telemetry.NewLineLoss(geom.Saturation())
	fol.AddMetric(rms)
	fol.AddMetric(loss)

	result, err := fol.Run(ctx, follower.RunConfig{
		Duration: time.Duration(cfg.Duration * float64(time.Second)),
		Poll:     2 * time.Millisecond,
	})
	if err != nil {
		return 0, err
	}

	return result.Metrics["tracking_rms"] + lineLossPenalty*result.Metrics["line_loss"], nil
}
