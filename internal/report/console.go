package report

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sanwatch/rdfmon/pkg/unisphere"
)

// RDFGroupDetailer resolves the detail view of an RDF group. The unisphere
// client satisfies it.
type RDFGroupDetailer interface {
	RDFGroup(ctx context.Context, symmetrixID string, number int) (*unisphere.RDFGroupDetails, error)
}

// printer groups thousands in capacity figures, e.g. 2,048.50.
var printer = message.NewPrinter(language.English)

var consoleRule = strings.Repeat("=", 50)

// PrintCapacity renders the provisioning capacity view of one array.
func PrintCapacity(w io.Writer, capacity *unisphere.ArrayCapacity) {
	fmt.Fprintf(w, "\nArray Capacity Information:\n%s\n", consoleRule)

	printer.Fprintf(w, "Total Capacity (GB): %.2f\n", capacity.TotalCapGB)
	if capacity.TotalCapGB > 0 {
		printer.Fprintf(w, "Used Capacity (GB): %.2f (%.1f%%)\n",
			capacity.UsedCapGB, capacity.UsedCapGB/capacity.TotalCapGB*100)
		printer.Fprintf(w, "Free Capacity (GB): %.2f (%.1f%%)\n",
			capacity.FreeCapGB, capacity.FreeCapGB/capacity.TotalCapGB*100)
		printer.Fprintf(w, "Subscribed Capacity (GB): %.2f (%.1f%%)\n",
			capacity.SubscribedCapGB, capacity.SubscribedCapGB/capacity.TotalCapGB*100)
	} else {
		printer.Fprintf(w, "Used Capacity (GB): %.2f\n", capacity.UsedCapGB)
		printer.Fprintf(w, "Free Capacity (GB): %.2f\n", capacity.FreeCapGB)
		printer.Fprintf(w, "Subscribed Capacity (GB): %.2f\n", capacity.SubscribedCapGB)
	}

	if capacity.UsedCapGB > 0 {
		fmt.Fprintf(w, "Subscription Ratio: %.2f:1\n", capacity.SubscribedCapGB/capacity.UsedCapGB)
	} else {
		fmt.Fprintln(w, "Subscription Ratio: N/A")
	}
}

// PrintHealth renders the health view of one array.
func PrintHealth(w io.Writer, health *unisphere.ArrayHealth) {
	fmt.Fprintf(w, "\nArray Health Status:\n%s\n", consoleRule)
	fmt.Fprintf(w, "Overall Health Status: %.1f\n", health.HealthScore.SymmetrixHealth)
	fmt.Fprintf(w, "Number of Active Alerts: %d\n", health.NumFailedComponents)

	if len(health.ComponentHealth) > 0 {
		fmt.Fprintf(w, "\nComponent Health:\n")
		for _, component := range health.ComponentHealth {
			fmt.Fprintf(w, "  %s: %s\n", orNA(component.Name), orNA(component.Status))
		}
	}
}

// PrintReplicationGroups renders every RDF group with its detail view, which
// is fetched per group.
func PrintReplicationGroups(ctx context.Context, w io.Writer, source RDFGroupDetailer, symmetrixID string, groups []unisphere.RDFGroup) error {
	fmt.Fprintf(w, "\nReplication Groups Status:\n%s\n", consoleRule)

	if len(groups) == 0 {
		fmt.Fprintln(w, "No replication groups found")
		return nil
	}

	for _, group := range groups {
		if group.RDFGroupNumber == 0 {
			continue
		}
		details, err := source.RDFGroup(ctx, symmetrixID, group.RDFGroupNumber)
		if err != nil {
			return err
		}

		fmt.Fprintf(w, "\nRDF Group %d:\n", group.RDFGroupNumber)
		fmt.Fprintf(w, "  Label: %s\n", orNA(group.Label))
		fmt.Fprintf(w, "  Type: %s\n", orNA(group.Type))
		fmt.Fprintf(w, "  State: %s\n", orNA(details.State()))
		fmt.Fprintf(w, "  Mode: %s\n", orNA(details.Mode()))
		fmt.Fprintf(w, "  Remote Symmetrix: %s\n", orNA(details.RemoteSymmetrix))
		fmt.Fprintf(w, "  Number of Pairs: %d\n", details.NumDevices)
	}
	return nil
}

// PrintReplicatedStorageGroups renders the replicated storage group listing.
func PrintReplicatedStorageGroups(w io.Writer, groups []unisphere.ReplicatedStorageGroup) {
	fmt.Fprintf(w, "\nStorage Groups with Replication:\n%s\n", consoleRule)

	if len(groups) == 0 {
		fmt.Fprintln(w, "No storage groups with replication found")
		return
	}

	for _, sg := range groups {
		fmt.Fprintf(w, "\nStorage Group: %s\n", sg.StorageGroupID)
		fmt.Fprintf(w, "  SRP: %s\n", orNA(sg.SRP))
		fmt.Fprintf(w, "  Service Level: %s\n", orNA(sg.ServiceLevel))
		fmt.Fprintf(w, "  RDF Groups: %s\n", orNA(joinInts(sg.RDFGroups)))
		fmt.Fprintf(w, "  Replication Mode: %s\n", orNA(sg.ReplicationMode))
	}
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func joinInts(ns []int) string {
	parts := make([]string, len(ns))
	for i, n := range ns {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}
