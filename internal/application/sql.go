package application

const getAllApplicationsSQL = `
SELECT application_id, application_name, area_id, kind, slug
FROM application
ORDER BY application_name
`

const getApplicationSQL = `
SELECT application_id, application_name, area_id, kind, slug
FROM application
WHERE application_id = ?
`

const createApplicationSQL = `
INSERT INTO application (
    application_name, area_id, kind, slug
) VALUES (?, ?, ?, ?)
`

const updateApplicationSQL = `
UPDATE application
SET application_name = ?, area_id = ?, kind = ?, slug = ?
WHERE application_id = ?
`

const deleteApplicationSQL = `
DELETE FROM application
WHERE application_id = ?
`

const getAllAreasSQL = `
SELECT area_id, area_name, internal
FROM area
ORDER BY area_name
`

const getAreaSQL = `
SELECT area_id, area_name, internal
FROM area
WHERE area_id = ?
`

const createAreaSQL = `
INSERT INTO area (area_name, internal) VALUES (?, ?)
`

const updateAreaSQL = `
UPDATE area
SET area_name = ?, internal = ?
WHERE area_id = ?
`

const deleteAreaSQL = `
DELETE FROM area
WHERE area_id = ?
`
