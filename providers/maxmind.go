package providers

import (
	"context"
	"fmt"
	"net"

	"github.com/oschwald/geoip2-golang"
	"github.com/spf13/afero"

	"github.com/9seconds/footprint/footlib"
)

const maxmindLanguage = "en"

// maxmindProvider resolves IP addresses with local mmdb files. City
// database is mandatory, ASN database is optional and used to detect
// ISP.
//
// Files are read into memory once, on creation. Nobody updates them:
// if you want to refresh databases, restart the application.
type maxmindProvider struct {
	cityReader *geoip2.Reader
	asnReader  *geoip2.Reader
}

func (m *maxmindProvider) Name() string {
	return NameMaxmind
}

func (m *maxmindProvider) Lookup(ctx context.Context, ip net.IP) (footlib.GeoResult, error) {
	result := footlib.GeoResult{}

	if err := ctx.Err(); err != nil {
		return result, fmt.Errorf("context is closed: %w", err)
	}

	record, err := m.cityReader.City(ip)
	if err != nil {
		return result, fmt.Errorf("cannot lookup a city: %w", err)
	}

	result.City = record.City.Names[maxmindLanguage]
	result.Country = record.Country.Names[maxmindLanguage]
	result.CountryCode = footlib.NormalizeAlpha2Code(record.Country.IsoCode)

	if len(record.Subdivisions) > 0 {
		result.Region = record.Subdivisions[0].Names[maxmindLanguage]
	}

	if result.CountryCode == "" && result.City == "" {
		return result, fmt.Errorf("%w: no data in database", ErrLookupFailed)
	}

	if result.Country == "" {
		result.Country = footlib.CountryName(result.CountryCode)
	}

	result.Raw = map[string]interface{}{
		"geoname_id": record.City.GeoNameID,
		"latitude":   record.Location.Latitude,
		"longitude":  record.Location.Longitude,
		"time_zone":  record.Location.TimeZone,
	}

	if m.asnReader != nil {
		if asn, err := m.asnReader.ASN(ip); err == nil {
			result.ISP = asn.AutonomousSystemOrganization
			result.Raw["asn"] = asn.AutonomousSystemNumber
		}
	}

	return result, nil
}

func (m *maxmindProvider) Close() error {
	m.cityReader.Close()

	if m.asnReader != nil {
		m.asnReader.Close()
	}

	return nil
}

// NewMaxmind opens databases from a given filesystem. Parameters are
// city_db (mandatory) and asn_db (optional), both are paths to mmdb
// files.
func NewMaxmind(fs afero.Fs, parameters map[string]string) (footlib.GeoProvider, error) {
	cityPath := parameters["city_db"]
	if cityPath == "" {
		return nil, ErrDatabasePathIsRequired
	}

	cityReader, err := maxmindOpen(fs, cityPath)
	if err != nil {
		return nil, fmt.Errorf("cannot open city database: %w", err)
	}

	rv := &maxmindProvider{
		cityReader: cityReader,
	}

	if asnPath := parameters["asn_db"]; asnPath != "" {
		asnReader, err := maxmindOpen(fs, asnPath)
		if err != nil {
			cityReader.Close()

			return nil, fmt.Errorf("cannot open asn database: %w", err)
		}

		rv.asnReader = asnReader
	}

	return rv, nil
}

func maxmindOpen(fs afero.Fs, path string) (*geoip2.Reader, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read %s: %w", path, err)
	}

	reader, err := geoip2.FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("cannot parse %s: %w", path, err)
	}

	return reader, nil
}
