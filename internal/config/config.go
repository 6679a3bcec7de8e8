package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const (
	SourceRest     = "rest"
	SourcePostgres = "postgres"
	SourceGoogle   = "google"
)

type Application struct {
	Listen   string   `koanf:"listen"`
	Source   Source   `koanf:"source"`
	Google   Google   `koanf:"google"`
	Database Database `koanf:"db"`
	Agenda   Agenda   `koanf:"agenda"`
	Refresh  Refresh  `koanf:"refresh"`
}

// Source selects where events are read from. Kinds are combined in the
// listed order.
type Source struct {
	Kinds   []string      `koanf:"kinds"`
	BaseUrl string        `koanf:"baseurl"`
	Token   string        `koanf:"token"`
	Timeout time.Duration `koanf:"timeout"`
	UserId  int           `koanf:"userid"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
	RefreshToken string `koanf:"refreshtoken"`
	CalendarId   string `koanf:"calendarid"`
	PastDays     int    `koanf:"pastdays"`
	FutureDays   int    `koanf:"futuredays"`
}

type Database struct {
	Host    string `koanf:"host"`
	Port    int    `koanf:"port"`
	User    string `koanf:"user"`
	Pass    string `koanf:"pass"`
	Name    string `koanf:"name"`
	Schema  string `koanf:"schema"`
	Migrate bool   `koanf:"migrate"`
}

type Agenda struct {
	DaysBefore int        `koanf:"daysbefore"`
	DaysAfter  int        `koanf:"daysafter"`
	MaxWindow  int        `koanf:"maxwindow"`
	Decoration Decoration `koanf:"decoration"`
}

// Decoration holds the marked-date styles handed to calendar clients.
type Decoration struct {
	Direct MarkStyle `koanf:"direct"`
	Ranged MarkStyle `koanf:"ranged"`
}

type MarkStyle struct {
	Background   string `koanf:"background"`
	BorderRadius int    `koanf:"borderradius"`
	TextColor    string `koanf:"textcolor"`
	FontWeight   string `koanf:"fontweight"`
}

type Refresh struct {
	Enabled  bool   `koanf:"enabled"`
	Schedule string `koanf:"schedule"`
}

func defaults() Application {
	pink := MarkStyle{
		Background:   "pink",
		BorderRadius: 10,
		TextColor:    "white",
		FontWeight:   "bold",
	}
	return Application{
		Listen: ":8181",
		Source: Source{
			Kinds:   []string{SourceRest},
			BaseUrl: "http://localhost:5000/api",
			Timeout: 15 * time.Second,
			UserId:  1,
		},
		Google: Google{
			CalendarId: "primary",
			PastDays:   365,
			FutureDays: 365,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "lovelog",
			Pass:   "",
			Name:   "lovelog",
			Schema: "public",
		},
		Agenda: Agenda{
			DaysBefore: 15,
			DaysAfter:  85,
			MaxWindow:  1000,
			Decoration: Decoration{Direct: pink, Ranged: pink},
		},
		Refresh: Refresh{
			Enabled:  true,
			Schedule: "@every 5m",
		},
	}
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "LOVELOG_",
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "LOVELOG_")), "_", ".")
			if k == "source.kinds" {
				return k, strings.Split(v, ",")
			}
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}

// HasSource reports whether the given source kind is enabled.
func (s Source) HasSource(kind string) bool {
	for _, k := range s.Kinds {
		if strings.EqualFold(strings.TrimSpace(k), kind) {
			return true
		}
	}
	return false
}
