// ledflow streams an LED color show to an MQTT topic. The show is a single
// FlowEnt flow: a chain of color sweeps with a brightness pulse layered on a
// second track, demonstrating the scheduler against a real frame consumer.
package main

import (
	"context"
	"encoding/binary"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/fogleman/ease"
	"github.com/lucasb-eyer/go-colorful"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	flowent "github.com/AndreaDev3D/FlowEnt"
)

type config struct {
	Mqtt struct {
		URL      string `yaml:"url"`
		Username string `yaml:"username"`
		Password string `yaml:"password"`
		Topic    string `yaml:"topic"`
	} `yaml:"mqtt"`
	Pixels     int `yaml:"pixels"`
	TickRateMs int `yaml:"tickRateMs"`
	Loops      int `yaml:"loops"`
}

func (c *config) tickRate() time.Duration {
	return time.Duration(c.TickRateMs) * time.Millisecond
}

func readConfig(path string) (*config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	cfg := &config{}
	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.Pixels < 2 {
		cfg.Pixels = 100
	}
	if cfg.TickRateMs <= 0 {
		cfg.TickRateMs = 33
	}
	if cfg.Loops <= 0 {
		cfg.Loops = 3
	}
	if cfg.Mqtt.Topic == "" {
		cfg.Mqtt.Topic = "home/ledflow/stream"
	}
	return cfg, nil
}

// strip renders a run of pixels and publishes each frame as the binary
// layout an ledrx-style device expects: a little-endian pixel count followed
// by packed RGB bytes.
type strip struct {
	client mqtt.Client
	topic  string
	pixels []colorful.Color
	gain   float64
}

func newStrip(client mqtt.Client, topic string, count int) *strip {
	return &strip{client: client, topic: topic, pixels: make([]colorful.Color, count), gain: 1}
}

// sweep blends the strip from one color to another, trailing the blend point
// across the pixel run so the transition travels rather than snaps.
func (s *strip) sweep(from, to colorful.Color, progress float64) {
	n := float64(len(s.pixels) - 1)
	for i := range s.pixels {
		pos := float64(i) / n
		t := progress*2 - pos
		if t < 0 {
			t = 0
		} else if t > 1 {
			t = 1
		}
		s.pixels[i] = from.BlendHcl(to, t)
	}
	s.publish()
}

func (s *strip) publish() {
	data := make([]byte, 2, len(s.pixels)*3+2)
	binary.LittleEndian.PutUint16(data, uint16(len(s.pixels)))
	for _, p := range s.pixels {
		r, g, b := darken(p, s.gain).Clamped().RGB255()
		data = append(data, r, g, b)
	}
	s.client.Publish(s.topic, 2, false, data)
}

func darken(c colorful.Color, gain float64) colorful.Color {
	return colorful.Color{R: c.R * gain, G: c.G * gain, B: c.B * gain}
}

func buildShow(rt *flowent.Runtime, s *strip, loops int) (*flowent.Flow, error) {
	sweep := func(fromHex, toHex string, duration float64, easing flowent.Easing) flowent.Animation {
		from, _ := colorful.Hex(fromHex)
		to, _ := colorful.Hex(toHex)
		tw, err := flowent.NewTween(nil, flowent.NewTweenOptions(duration).SetEasing(easing))
		if err != nil {
			panic(err) // durations are compile-time constants
		}
		tw.OnUpdate(func(p float64) { s.sweep(from, to, p) })
		return tw
	}

	pulse, err := flowent.NewTween(nil, flowent.NewTweenOptions(2).SetLoopCount(6))
	if err != nil {
		return nil, err
	}
	pulse.OnUpdate(func(p float64) {
		// Brightness peaks mid-pulse and dips at every loop boundary.
		s.gain = 0.5 + 0.5*ease.InOutQuad(2*absHalf(p))
	})

	flow, err := flowent.NewFlow(rt, flowent.NewFlowOptions().SetLoopCount(loops))
	if err != nil {
		return nil, err
	}
	flow.Queue(sweep("#000005", "#802020", 4, ease.InOutQuad)).
		Queue(sweep("#802020", "#202080", 4, ease.InOutCubic)).
		Queue(sweep("#202080", "#000005", 4, ease.OutQuad)).
		At(0, pulse)
	return flow, flow.Err()
}

func absHalf(p float64) float64 {
	if p > 0.5 {
		return 1 - p
	}
	return p
}

func run() error {
	configPath := flag.String("config", "config.yaml", "YAML config file.")
	flag.Parse()

	logger, err := zap.NewProduction()
	if err != nil {
		return err
	}
	defer logger.Sync()

	cfg, err := readConfig(*configPath)
	if err != nil {
		return err
	}
	logger.Info("config loaded",
		zap.String("broker", cfg.Mqtt.URL),
		zap.Int("pixels", cfg.Pixels),
		zap.Duration("tickRate", cfg.tickRate()))

	options := mqtt.NewClientOptions().
		AddBroker(cfg.Mqtt.URL).
		SetClientID("ledflow").
		SetUsername(cfg.Mqtt.Username).
		SetPassword(cfg.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second)
	client := mqtt.NewClient(options)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)
	logger.Info("connected")

	rt := flowent.NewRuntime(flowent.RuntimeConfig{TickRate: cfg.tickRate(), Logger: logger})
	show, err := buildShow(rt, newStrip(client, cfg.Mqtt.Topic, cfg.Pixels), cfg.Loops)
	if err != nil {
		return err
	}
	show.OnStarted(func() { logger.Info("show started") }).
		OnCompleted(func() { logger.Info("show completed") })

	if err := rt.Start(context.Background()); err != nil {
		return err
	}
	defer rt.Stop()
	if err := show.Start(); err != nil {
		return err
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-show.Done():
	case <-stop:
		logger.Info("interrupted")
	}
	return nil
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
