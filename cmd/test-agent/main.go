package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/hrygo/daysuntil/internal/profile"
	"github.com/hrygo/daysuntil/plugin/ai/aitime"
	"github.com/hrygo/daysuntil/plugin/ai/router"
	"github.com/hrygo/daysuntil/plugin/calendar"
	"github.com/hrygo/daysuntil/server/service/bot"
	"github.com/hrygo/daysuntil/server/service/countdown"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	// 1. Load configuration
	log.Println("loading profile...")
	p := profile.Default()
	p.FromEnv()
	if p.LUISAppID != "" && p.LUISAPIKey != "" {
		p.NLUProvider = profile.ProviderLUIS
	}
	if err := p.Validate(); err != nil {
		log.Fatalf("Invalid profile: %v", err)
	}

	// 2. Build the countdown core
	log.Println("building countdown service...")
	registry := calendar.NewRegistry()
	dates, err := aitime.NewEnglishService(p.Culture)
	if err != nil {
		log.Fatalf("Failed to create date service: %v", err)
	}
	svc := countdown.NewService(registry, dates)

	// 3. Pick the recognizer
	var recognizer router.Recognizer = router.NewRuleMatcher(registry)
	if p.NLUProvider == profile.ProviderLUIS {
		log.Println("using LUIS app", p.LUISAppID)
		client, err := router.NewLUISClient(router.LUISConfig{
			AppID:  p.LUISAppID,
			APIKey: p.LUISAPIKey,
			Host:   p.LUISHost,
			Region: p.LUISRegion,
		})
		if err != nil {
			log.Fatalf("Failed to create LUIS client: %v", err)
		}
		recognizer = client
	}

	loc, err := p.Location()
	if err != nil {
		log.Fatalf("Invalid timezone: %v", err)
	}
	b := bot.New(recognizer, svc, bot.WithLocation(loc), bot.WithCulture(p.Culture))

	fmt.Println("\n========================================")
	fmt.Println("  days-until bot sample run")
	fmt.Println("  today:", time.Now().In(loc).Format("Mon Jan 02 2006"))
	fmt.Println("========================================")

	tests := []struct {
		name  string
		input string
	}{
		{name: "named event", input: "how many days until xmas?"},
		{name: "day of month only", input: "how long until the 15th"},
		{name: "month and day", input: "days until march 3rd"},
		{name: "full date", input: "how many days until 2030-01-01"},
		{name: "relative date", input: "how many days until next friday"},
		{name: "month only", input: "how many days until june"},
		{name: "no entity", input: "what is the weather like"},
	}

	ctx := context.Background()
	for i, test := range tests {
		fmt.Printf("\n[%d/%d] %s\n", i+1, len(tests), test.name)
		fmt.Println("input:", test.input)

		startTime := time.Now()
		reply, err := b.Reply(ctx, test.input)
		duration := time.Since(startTime)

		if err != nil {
			log.Printf("turn failed: %v\n", err)
			fmt.Println("reply:", bot.ReplyTurnError)
			continue
		}

		fmt.Println("reply:", reply)
		fmt.Printf("took: %v\n", duration)
		fmt.Println("------------------------------------------------")
	}

	fmt.Println("\n========================================")
	fmt.Println("  done")
	fmt.Println("========================================")
}
