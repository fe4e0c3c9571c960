package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/google/uuid"

	"github.com/waiogamez/mirafloresplus-core/internal/config"
	"github.com/waiogamez/mirafloresplus-core/internal/db"
	"github.com/waiogamez/mirafloresplus-core/internal/directory"
	"github.com/waiogamez/mirafloresplus-core/internal/report"
	"github.com/waiogamez/mirafloresplus-core/internal/session"
)

// reporter prints the monthly fee accrual per professional, straight from the
// completed session records. Finance runs it at month close.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	month := flag.String("month", time.Now().Format("2006-01"), "calendar month YYYY-MM")
	professional := flag.String("professional", "", "optional professional UUID; all when empty")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	agg := report.NewAggregator(session.NewPgRepository(pool), directory.NewPgDirectory(pool))

	var reports []report.MonthlyReport
	if *professional != "" {
		professionalID, err := uuid.Parse(*professional)
		if err != nil {
			log.Fatalf("invalid professional id: %v", err)
		}
		rep, err := agg.ReportFor(ctx, professionalID, *month)
		if err != nil {
			log.Fatalf("report error: %v", err)
		}
		reports = []report.MonthlyReport{*rep}
	} else {
		reports, err = agg.ReportsForAll(ctx, *month)
		if err != nil {
			log.Fatalf("report error: %v", err)
		}
	}

	printReports(*month, reports)
}

func printReports(month string, reports []report.MonthlyReport) {
	fmt.Printf("Monthly report %s (%d professionals)\n\n", month, len(reports))

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "PROFESSIONAL\tTOTAL\tPRESENCIAL\tVIDEO\tHOURS\tFEES")
	for _, r := range reports {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.2f\tS/ %d.%02d\n",
			r.ProfessionalName,
			r.TotalAppointments,
			r.PresencialCount,
			r.VideollamadaCount,
			r.TotalHours,
			r.TotalFeeCents/100, r.TotalFeeCents%100,
		)
	}
	_ = w.Flush()
}
