package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"text/tabwriter"

	"github.com/geocrest/gateway/internal/arcgis/http/dto"
	arcgisUseCase "github.com/geocrest/gateway/internal/arcgis/usecase"
	customValidation "github.com/geocrest/gateway/internal/validation"
)

// crawlOutput is the JSON document printed by crawl-catalog.
type crawlOutput struct {
	dto.CatalogResponse
	Built  int `json:"built"`
	Failed int `json:"failed"`
}

// RunCrawlCatalog discovers the catalog at rootURL and reports every listed
// service and how many of them could be built. The gateway must be configured
// to crawl services, otherwise Built is always zero.
func RunCrawlCatalog(
	ctx context.Context,
	gatewayUseCase arcgisUseCase.GatewayUseCase,
	logger *slog.Logger,
	writer io.Writer,
	rootURL string,
	proxyURL string,
	format string,
) error {
	request := dto.CatalogRequest{URL: rootURL, Proxy: proxyURL}
	if err := request.Validate(); err != nil {
		return fmt.Errorf("invalid catalog arguments: %w", customValidation.WrapValidationError(err))
	}

	logger.Info("crawling catalog", slog.String("url", rootURL))

	catalog, err := gatewayUseCase.Catalog(ctx, rootURL, proxyURL)
	if err != nil {
		return fmt.Errorf("failed to crawl catalog: %w", err)
	}

	built := len(catalog.Services)
	failed := len(catalog.ServiceInfos) - built

	if format == "json" {
		if err := writeJSON(writer, crawlOutput{
			CatalogResponse: dto.MapCatalogToResponse(catalog, catalog.ServiceInfos, 0, len(catalog.ServiceInfos)),
			Built:           built,
			Failed:          failed,
		}); err != nil {
			return err
		}
	} else {
		_, _ = fmt.Fprintf(writer, "Catalog: %s\n", catalog.RootURL)
		_, _ = fmt.Fprintf(writer, "Version: %g\n", catalog.CurrentVersion)
		_, _ = fmt.Fprintf(writer, "Secured: %t\n", catalog.RequiresToken())
		_, _ = fmt.Fprintf(writer, "Services: %d listed, %d built, %d failed\n\n", len(catalog.ServiceInfos), built, failed)

		tw := tabwriter.NewWriter(writer, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "NAME\tTYPE\tURL")
		for _, info := range catalog.ServiceInfos {
			_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, info.Type, info.URL(catalog.RootURL))
		}
		_ = tw.Flush()
	}

	logger.Info("catalog crawled",
		slog.String("url", catalog.RootURL),
		slog.Int("listed", len(catalog.ServiceInfos)),
		slog.Int("built", built))

	return nil
}

