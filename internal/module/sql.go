package module

const getModulesForApplicationSQL = `
SELECT module_id, application_id, module_name
FROM module
WHERE application_id = ?
ORDER BY module_name
`

const getModuleSQL = `
SELECT module_id, application_id, module_name
FROM module
WHERE module_id = ?
`

const createModuleSQL = `
INSERT INTO module (application_id, module_name) VALUES (?, ?)
`

const deleteModuleSQL = `
DELETE FROM module
WHERE module_id = ?
`

const getModulesForLicenseSQL = `
SELECT m.module_id, m.application_id, m.module_name
FROM license_module lm
JOIN module m ON m.module_id = lm.module_id
WHERE lm.license_id = ?
ORDER BY m.module_name
`

const enableModuleSQL = `
INSERT OR IGNORE INTO license_module (license_id, module_id) VALUES (?, ?)
`

const disableModuleSQL = `
DELETE FROM license_module
WHERE license_id = ? AND module_id = ?
`

const getLicenseApplicationSQL = `
SELECT application_id FROM license WHERE license_id = ?
`
