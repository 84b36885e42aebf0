package services

import (
	"net"

	"github.com/oschwald/geoip2-golang"
)

// GeoInfo holds the geolocation attributes recorded with each click
type GeoInfo struct {
	Country *string
	Region  *string
	City    *string
}

// GeoIPService resolves client IP addresses to coarse geolocation data
type GeoIPService interface {
	Lookup(ip string) GeoInfo
	Close() error
}

type geoIPService struct {
	reader *geoip2.Reader
}

// NewGeoIPService opens the MaxMind city database at dbPath. An empty path
// returns a disabled service whose lookups yield empty results.
func NewGeoIPService(dbPath string) (GeoIPService, error) {
	if dbPath == "" {
		return &geoIPService{}, nil
	}

	reader, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, err
	}

	return &geoIPService{reader: reader}, nil
}

func (s *geoIPService) Lookup(ip string) GeoInfo {
	if s.reader == nil {
		return GeoInfo{}
	}

	parsed := net.ParseIP(ip)
	if parsed == nil {
		return GeoInfo{}
	}

	record, err := s.reader.City(parsed)
	if err != nil {
		return GeoInfo{}
	}

	var info GeoInfo
	if code := record.Country.IsoCode; code != "" {
		info.Country = &code
	}
	if len(record.Subdivisions) > 0 {
		if name := record.Subdivisions[0].Names["en"]; name != "" {
			info.Region = &name
		}
	}
	if name := record.City.Names["en"]; name != "" {
		info.City = &name
	}

	return info
}

func (s *geoIPService) Close() error {
	if s.reader == nil {
		return nil
	}
	return s.reader.Close()
}
