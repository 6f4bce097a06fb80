// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package transport

import (
	"fmt"
	"log"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/relabs-tech/fused_localization/internal/localization"
)

// publishTimeout bounds how long a publish may wait for the client.
const publishTimeout = 100 * time.Millisecond

// Bus is an MQTT connection carrying odometry, marker poses and fused poses.
type Bus struct {
	name   string
	client mqtt.Client
}

// Connect opens an MQTT connection. name prefixes log lines.
func Connect(name, broker, clientID string) (*Bus, error) {
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOrderMatters(true).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			log.Printf("%s: MQTT connection lost: %v", name, err)
		})

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("%s: MQTT connect %s: %w", name, broker, token.Error())
	}
	log.Printf("%s: connected to MQTT broker at %s", name, broker)

	return &Bus{name: name, client: client}, nil
}

// Close disconnects, giving in-flight work 250ms to finish.
func (b *Bus) Close() {
	b.client.Disconnect(250)
	log.Printf("%s: disconnected from MQTT broker", b.name)
}

func (b *Bus) subscribe(topic string, handler mqtt.MessageHandler) error {
	token := b.client.Subscribe(topic, 0, handler)
	token.Wait()
	if token.Error() != nil {
		return fmt.Errorf("%s: subscribe %s: %w", b.name, topic, token.Error())
	}
	log.Printf("%s: subscribed to %s", b.name, topic)
	return nil
}

// SubscribeOdometry delivers every decodable odometry message on topic to fn.
// With ordered delivery fn is never called concurrently with itself.
func (b *Bus) SubscribeOdometry(topic string, fn func(localization.Odometry)) error {
	return b.subscribe(topic, odometryHandler(b.name, fn))
}

// SubscribePose delivers every decodable PoseStamped message on topic to fn.
func (b *Bus) SubscribePose(topic string, fn func(localization.Pose)) error {
	return b.subscribe(topic, poseHandler(b.name, fn))
}

func odometryHandler(name string, fn func(localization.Odometry)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		o, err := DecodeOdometry(msg.Payload())
		if err != nil {
			log.Printf("%s: odometry on %s dropped: %v", name, msg.Topic(), err)
			return
		}
		fn(o)
	}
}

func poseHandler(name string, fn func(localization.Pose)) mqtt.MessageHandler {
	return func(_ mqtt.Client, msg mqtt.Message) {
		p, err := DecodePose(msg.Payload())
		if err != nil {
			log.Printf("%s: pose on %s dropped: %v", name, msg.Topic(), err)
			return
		}
		fn(p)
	}
}

func (b *Bus) publish(topic string, retained bool, payload []byte) error {
	token := b.client.Publish(topic, 0, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("%s: publish %s: timed out", b.name, topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("%s: publish %s: %w", b.name, topic, token.Error())
	}
	return nil
}

// PublishPose publishes p on topic as a PoseStamped message.
func (b *Bus) PublishPose(topic string, retained bool, p localization.Pose) error {
	payload, err := EncodePose(p)
	if err != nil {
		return fmt.Errorf("%s: json marshal error (pose): %w", b.name, err)
	}
	return b.publish(topic, retained, payload)
}

// PublishOdometry publishes o on topic as an Odometry message.
func (b *Bus) PublishOdometry(topic string, o localization.Odometry) error {
	payload, err := EncodeOdometry(o)
	if err != nil {
		return fmt.Errorf("%s: json marshal error (odometry): %w", b.name, err)
	}
	return b.publish(topic, false, payload)
}

// PosePublisher returns a localization.Publisher that publishes retained
// poses on topic, so late subscribers get the current pose immediately.
// It never waits for the broker; delivery failures are logged.
func (b *Bus) PosePublisher(topic string) localization.Publisher {
	return localization.PublisherFunc(func(p localization.Pose) error {
		payload, err := EncodePose(p)
		if err != nil {
			return fmt.Errorf("%s: json marshal error (pose): %w", b.name, err)
		}
		token := b.client.Publish(topic, 0, true, payload)
		go b.watch(topic, token)
		return nil
	})
}

// watch logs the outcome of a publish nobody waits on.
func (b *Bus) watch(topic string, token mqtt.Token) {
	if !token.WaitTimeout(publishTimeout) {
		log.Printf("%s: publish %s: timed out", b.name, topic)
		return
	}
	if err := token.Error(); err != nil {
		log.Printf("%s: publish %s: %v", b.name, topic, err)
	}
}
