package weather

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Forecast is a short daily outlook for a point.
type Forecast struct {
	Place string
	Days  []Day
}

type Day struct {
	Date          time.Time
	MaxTempC      float64
	MinTempC      float64
	RainMM        float64
	RainChancePct int
}

// Provider looks up the forecast for a coordinate.
type Provider interface {
	Forecast(ctx context.Context, place string, lat, lon float64) (*Forecast, error)
}

// Render formats a forecast as a Hindi WhatsApp message.
func (f *Forecast) Render() string {
	var b strings.Builder
	fmt.Fprintf(&b, "🌦️ *%s का मौसम*\n", f.Place)
	for _, d := range f.Days {
		fmt.Fprintf(&b, "\n📅 %s: 🌡️ %.0f°-%.0f°C", d.Date.Format("02/01"), d.MinTempC, d.MaxTempC)
		if d.RainChancePct > 0 || d.RainMM > 0 {
			fmt.Fprintf(&b, ", 🌧️ %d%% (%.1f मिमी)", d.RainChancePct, d.RainMM)
		}
	}
	if advice := f.sprayAdvice(); advice != "" {
		b.WriteString("\n\n" + advice)
	}
	return b.String()
}

func (f *Forecast) sprayAdvice() string {
	if len(f.Days) == 0 {
		return ""
	}
	today := f.Days[0]
	if today.RainChancePct >= 60 {
		return "💡 आज बारिश की संभावना है, छिड़काव और सिंचाई टालें।"
	}
	if today.MaxTempC >= 40 {
		return "💡 तेज़ गर्मी है, सिंचाई शाम को करें।"
	}
	return ""
}
