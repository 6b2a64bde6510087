// Package naiadpb defines the messages and the gRPC service exposed
// by the naiad daemon. Messages are encoded in JSON on the wire. Time
// fields use the protobuf well-known types.
package naiadpb

import (
	"google.golang.org/protobuf/types/known/durationpb"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/timestamppb"
)

type Empty = emptypb.Empty

type SubmitRequest struct {
	Version string `json:"version"`
	Program string `json:"program"`
}

type SubmitReply struct {
	Commands int `json:"commands"`
}

// InterruptRequest raises one of the numbered interrupts. Zone and
// Value are only used by zone scoped interrupts.
type InterruptRequest struct {
	Code  int `json:"code"`
	Zone  int `json:"zone,omitempty"`
	Value int `json:"value,omitempty"`
}

type ZoneStatus struct {
	ID                    int                    `json:"id"`
	WateringStatus        string                 `json:"watering-status"`
	FirstWatering         *timestamppb.Timestamp `json:"first-watering,omitempty"`
	WateringInterval      *durationpb.Duration   `json:"watering-interval,omitempty"`
	WaterVolume           int                    `json:"water-volume,omitempty"`
	WateringDuration      float64                `json:"watering-duration,omitempty"`
	HumidityMin           int                    `json:"humidity-min,omitempty"`
	HumidityMax           int                    `json:"humidity-max,omitempty"`
	SensorsCheckInterval  *durationpb.Duration   `json:"sensors-check-interval"`
	FertilizingStatus     string                 `json:"fertilizing-status"`
	FertilizerVolume      int                    `json:"fertilizer-volume,omitempty"`
	WaterSensorFault      bool                   `json:"water-sensor-fault,omitempty"`
	FertilizerSensorFault bool                   `json:"fertilizer-sensor-fault,omitempty"`
	LastHumidityValue     int                    `json:"last-humidity-value"`
	WateringScheduled     bool                   `json:"watering-scheduled"`
}

type Cell struct {
	Zone   int     `json:"zone"`
	Row    int     `json:"row"`
	Column int     `json:"column"`
	Color  string  `json:"color"`
	Border float64 `json:"border,omitempty"`
	Line   bool    `json:"line,omitempty"`
}

type Message struct {
	Time *timestamppb.Timestamp `json:"time"`
	Text string                 `json:"text"`
}

type Status struct {
	Version  string                 `json:"version"`
	Since    *timestamppb.Timestamp `json:"since"`
	Columns  int                    `json:"columns"`
	Zones    []ZoneStatus           `json:"zones"`
	Cells    []Cell                 `json:"cells"`
	Messages []Message              `json:"messages,omitempty"`
}
