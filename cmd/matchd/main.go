/* Copyright 2024 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package main runs an HTTP and WebSocket service that evaluates
// subjects with stored clause-set documents.
//
//	matchd -addr :8080 -db specs.db
//	curl -X PUT --data-binary @shapes.yaml localhost:8080/specs/shapes
//	curl -d '{"tag":"Circle","args":[1]}' localhost:8080/specs/shapes/eval
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"

	"github.com/Comcast/patmatch/service"
	"github.com/Comcast/patmatch/tools"
)

func main() {
	cfg := service.DefaultConfig

	var (
		load = flag.String("load", "", "comma-separated name=filename documents to store at startup")
	)

	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DB, "db", cfg.DB, "BoltDB filename (empty for memory only)")
	flag.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "evaluation timeout")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug logging")

	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	var store service.Store
	if cfg.DB != "" {
		bs := service.NewBoltStore(cfg.DB)
		bs.Debug = cfg.Debug
		if err := bs.Open(ctx); err != nil {
			log.Fatal(err)
		}
		defer bs.Close()
		store = bs
	}

	s := service.NewService(cfg, store, nil)

	if err := s.Load(ctx); err != nil {
		log.Fatal(err)
	}

	if *load != "" {
		for name, filename := range parseLoads(*load) {
			src, err := tools.ReadFileWithInlines(filename)
			if err != nil {
				log.Fatal(err)
			}
			if _, err = s.PutSpec(ctx, name, src); err != nil {
				log.Fatalf("%s (%s): %s", name, filename, err)
			}
		}
	}

	if err := s.ListenAndServe(ctx); err != nil {
		log.Fatal(err)
	}
}
