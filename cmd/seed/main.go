package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"promo-roulette-backend/internal/common/config"
	"promo-roulette-backend/internal/common/logger"
	prizemodels "promo-roulette-backend/internal/features/prize/models"
	prizeredis "promo-roulette-backend/internal/features/prize/repository/redis"
	redisplatform "promo-roulette-backend/internal/platform/redis"
)

// Заливает каталог призов из JSON-файла. Существующие ключи
// перезаписываются целиком, лишние ключи в хранилище не трогаются.
//
//	go run ./cmd/seed -file prizes.json
func main() {
	file := flag.String("file", "prizes.json", "path to the prize catalog JSON")
	flag.Parse()

	cfg := config.Load()
	logger.Init("promo-roulette-seed", cfg.Debug)

	data, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("Failed to read catalog file")
	}

	var prizes []*prizemodels.Prize
	if err := json.Unmarshal(data, &prizes); err != nil {
		log.Fatal().Err(err).Msg("Failed to parse catalog file")
	}
	if len(prizes) == 0 {
		log.Fatal().Msg("Catalog file contains no prizes")
	}
	for i, p := range prizes {
		if p.Key == "" {
			log.Fatal().Int("index", i).Msg("Prize without key in catalog file")
		}
	}

	ctx := context.Background()

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisClient, err := redisplatform.Open(ctx, redisAddr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer redisClient.Close()

	repo := prizeredis.NewPrizeRepository(redisClient.Client)

	for _, p := range prizes {
		if err := repo.Save(ctx, p); err != nil {
			log.Fatal().Err(err).Str("key", p.Key).Msg("Failed to save prize")
		}
		log.Info().Str("key", p.Key).Str("name", p.Name).Bool("active", p.IsActive).Msg("Prize saved")
	}

	log.Info().Int("count", len(prizes)).Msg("Catalog seeded")
}
