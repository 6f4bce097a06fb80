package app

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/relabs-tech/fused_localization/internal/config"
	"github.com/relabs-tech/fused_localization/internal/localization"
	"github.com/relabs-tech/fused_localization/internal/orientation"
	"github.com/relabs-tech/fused_localization/internal/transport"
)

func formatPose(tag string, p localization.Pose) string {
	return fmt.Sprintf(
		"[%s] %s frame=%s  X=%7.3f  Y=%7.3f  Z=%7.3f  YAW=%6.3f",
		tag, p.Stamp.Format("15:04:05.000"), p.FrameID,
		p.Position.X, p.Position.Y, p.Position.Z,
		orientation.Yaw(p.Orientation),
	)
}

// RunConsoleMQTT prints raw marker poses and fused poses as they arrive.
func RunConsoleMQTT() error {
	cfg := config.Get()

	bus, err := transport.Connect("console", cfg.MQTTBroker, cfg.MQTTClientIDConsole)
	if err != nil {
		return err
	}
	defer bus.Close()

	if err := bus.SubscribePose(cfg.TopicMarkerPose, func(p localization.Pose) {
		fmt.Println(formatPose("MARK", p))
	}); err != nil {
		return err
	}

	if err := bus.SubscribePose(cfg.TopicPoseFused, func(p localization.Pose) {
		fmt.Println(formatPose("FUSE", p))
	}); err != nil {
		return err
	}

	// Wait for Ctrl+C
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Println("console: shutting down")
	return nil
}
