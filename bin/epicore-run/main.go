package main

import (
	"flag"
	"log"
	"runtime"
	"time"

	"epicore"
)

func main() {
	numCPUPtr := flag.Int("threads", runtime.NumCPU(), "number of CPU threads")
	loggerType := flag.String("logger", "csv", "data logger type (csv|sqlite)")
	seedPtr := flag.Int64("seed", time.Now().UTC().UnixNano(), "random seed")
	flag.Parse()

	runtime.GOMAXPROCS(*numCPUPtr)

	configPath := flag.Arg(0)
	conf, err := epicore.LoadModelConfig(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if err := conf.Validate(); err != nil {
		log.Fatal(err)
	}

	net, err := epicore.ParseEdgeListFile(conf.Sim.NetworkPath, conf.Sim.Directed, conf.Sim.SkipLines)
	if err != nil {
		log.Fatal(err)
	}

	model, err := epicore.BuildModel(conf, net)
	if err != nil {
		log.Fatal(err)
	}

	seed := *seedPtr
	if conf.Sim.Seed != 0 {
		seed = conf.Sim.Seed
	}

	firstStart := time.Now()
	_, err = model.RunMultiple(conf.Sim.NumDays, conf.Sim.NumReplicates, seed, *numCPUPtr, func(res epicore.ReplicateResult) {
		start := time.Now()
		log.Printf("writing replicate %03d\n", res.Index+1)
		if res.Err != nil {
			log.Printf("replicate %03d failed: %s\n", res.Index+1, res.Err)
			return
		}
		var logger epicore.DataLogger
		switch *loggerType {
		case "csv":
			logger = epicore.NewCSVLogger(conf.Log.Path, res.Index+1)
		case "sqlite":
			logger = epicore.NewSQLiteLogger(conf.Log.Path, res.Index+1)
		default:
			log.Fatalf("%s is not a valid logger type (csv|sqlite)", *loggerType)
		}
		if err := logger.Init(); err != nil {
			log.Fatal(err)
		}
		if err := logger.WriteAll(res.DB, model.AllVirusDefs(), model.AllToolDefs()); err != nil {
			log.Fatal(err)
		}
		if err := logger.Close(); err != nil {
			log.Fatal(err)
		}
		log.Printf("finished replicate %03d in %s\n", res.Index+1, time.Since(start))
	})
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("completed all runs in %s.", time.Since(firstStart))
}
